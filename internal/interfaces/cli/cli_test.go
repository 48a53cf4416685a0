package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoud-shayan/northwind/internal/domain/shared"
)

// execute runs the root command against the sqlite file at dbPath.
func execute(t *testing.T, dbPath, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NORTHWIND_DATABASE_PATH", dbPath)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", t.TempDir()}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func tempDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "northwind.db")
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"categories", "products", "like", "list", "add", "increase-price", "delete", "join", "group-join", "people"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_DefaultsToGroupJoin(t *testing.T) {
	out, err := execute(t, tempDB(t), "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Beverages has 12 products.\n Chai\n"))
	assert.Contains(t, out, "Seafood has 12 products.\n")
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	_, err := execute(t, tempDB(t), "", "surprise")
	assert.Error(t, err)
}

func TestMutationCommands(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, db, "", "add")
	require.NoError(t, err)
	assert.Contains(t, out, "masoud shayan")
	assert.Contains(t, out, "$500.00")

	out, err = execute(t, db, "", "increase-price")
	require.NoError(t, err)
	assert.Contains(t, out, "$510.00")

	out, err = execute(t, db, "", "delete")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1 product(s) were deleted.\n"))
	assert.NotContains(t, out, "masoud shayan")

	out, err = execute(t, db, "", "delete")
	require.NoError(t, err)
	assert.Equal(t, "the last transaction did not execute\n", out)
}

func TestAddCmd_Flags(t *testing.T) {
	db := tempDB(t)

	_, err := execute(t, db, "", "add", "--price", "cheap")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = execute(t, db, "", "add", "--name", "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	out, err := execute(t, db, "", "add", "--category", "1", "--name", "maso tea", "--price", "")
	require.NoError(t, err)
	assert.Contains(t, out, "maso tea")
}

func TestIncreasePriceCmd_NoMatch(t *testing.T) {
	_, err := execute(t, tempDB(t), "", "increase-price", "--prefix", "nothing-like-this")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductsCmd_ReadsPrice(t *testing.T) {
	out, err := execute(t, tempDB(t), "x\n250\n", "products")
	require.NoError(t, err)

	assert.Contains(t, out, "Enter a product price :\nEnter a product price :\n250\n")
	assert.Contains(t, out, "pName : Côte de Blaye")
	assert.NotContains(t, out, "Thüringer")
}

func TestLikeCmd(t *testing.T) {
	out, err := execute(t, tempDB(t), "ale\n", "like")
	require.NoError(t, err)
	assert.Contains(t, out, "name : Sasquatch Ale - stock : 111 - discounted : false")
}

func TestJoinAndListCmds(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, db, "", "join")
	require.NoError(t, err)
	assert.Equal(t, 77, strings.Count(out, " is in "))

	out, err = execute(t, db, "", "list")
	require.NoError(t, err)
	assert.Equal(t, 78, strings.Count(out, "\n"))
}

func TestPeopleCmd(t *testing.T) {
	out, err := execute(t, tempDB(t), "", "people", "--min-years", "35")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "years of experience"))

	_, err = execute(t, tempDB(t), "", "people", "--min-years=-1")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("NORTHWIND_DATABASE_DRIVER", "oracle")
	_, err := execute(t, tempDB(t), "", "list")
	assert.Error(t, err)
}

func TestExecuteContext_ReportsUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"lsit"}, `unknown command "lsit"`},
		{"unknown flag", []string{"add", "--pric", "5"}, "unknown flag: --pric"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			var stderr bytes.Buffer
			cmd.SetOut(io.Discard)
			cmd.SetErr(&stderr)
			cmd.SetArgs(tt.args)

			err := executeContext(context.Background(), cmd)
			require.Error(t, err)
			assert.Contains(t, stderr.String(), "Error: ")
			assert.Contains(t, stderr.String(), tt.want)
			assert.Contains(t, stderr.String(), "northwind --help")
		})
	}
}

func TestExecuteContext_RoutineFailureNotRepeated(t *testing.T) {
	t.Setenv("NORTHWIND_DATABASE_PATH", tempDB(t))

	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetOut(io.Discard)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", t.TempDir(), "increase-price", "--prefix", "nothing-like-this"})

	err := executeContext(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, stderr.String())
}
