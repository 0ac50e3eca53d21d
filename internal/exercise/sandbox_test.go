package exercise

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxRun(t *testing.T) {
	sb := NewSandbox()
	ctx := context.Background()

	tests := []struct {
		name string
		code string
		want string
	}{
		{"printed output", `fmt.Println("hello")`, "hello"},
		{"expression value", `1 + 2`, "3"},
		{"stdlib call", `strings.ToUpper("go")`, "GO"},
		{"explicit import", "import \"strings\"\nstrings.Repeat(\"ab\", 2)", "abab"},
		{"nothing", "", FinishedMessage},
		{"only imports", `import "fmt"`, FinishedMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sb.Run(ctx, tc.code)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSandboxKeepsState(t *testing.T) {
	sb := NewSandbox()
	ctx := context.Background()

	_, err := sb.Run(ctx, "var counter = 41")
	require.NoError(t, err)

	got, err := sb.Run(ctx, "counter + 1")
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestSandboxProgram(t *testing.T) {
	sb := NewSandbox()
	src := `package main

import "fmt"

func main() {
	fmt.Println("from main")
}
`
	got, err := sb.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "from main", got)
}

func TestSandboxForbiddenImports(t *testing.T) {
	sb := NewSandbox()
	for _, code := range []string{
		`import "os"`,
		"import (\n\t\"fmt\"\n\tx \"os/exec\"\n)\nx.Command(\"ls\")",
		"package main\nimport \"net/http\"\nfunc main() {}",
	} {
		_, err := sb.Run(context.Background(), code)
		require.ErrorIs(t, err, ErrForbiddenImport, "code %q", code)
	}
}

func TestSandboxErrors(t *testing.T) {
	sb := NewSandbox()
	_, err := sb.Run(context.Background(), "fmt.Println(")
	require.Error(t, err)

	_, err = sb.Run(context.Background(), "undefinedThing + 1")
	require.Error(t, err)
}

func TestSandboxAllowlist(t *testing.T) {
	sb := NewSandbox(WithAllowlist([]string{"strings", "fmt"}))
	assert.Equal(t, []string{"fmt", "strings"}, sb.Allowed())

	_, err := sb.Run(context.Background(), `import "math"`)
	require.ErrorIs(t, err, ErrForbiddenImport)
}

func TestScanImports(t *testing.T) {
	src := "import \"fmt\"\nimport (\n\ts \"strings\"\n\t. \"math\"\n\t_ \"sort\"\n)\nfmt.Println(\"import \\\"os\\\"\")\n"
	got := scanImports(src)

	assert.Equal(t, []importSpec{
		{path: "fmt"},
		{name: "s", path: "strings"},
		{name: ".", path: "math"},
		{name: "_", path: "sort"},
	}, got.imports)
	assert.False(t, got.program)
	assert.Len(t, got.body, len(src))
	assert.NotContains(t, got.body, "strings")
	assert.Contains(t, got.body, `fmt.Println("import \"os\"")`)

	assert.True(t, scanImports("// header\npackage main\n").program)
}
