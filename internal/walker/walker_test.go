package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collect(t *testing.T, root string, opts Options) []string {
	t.Helper()
	files, errs := Walk(context.Background(), root, opts)
	var rels []string
	for f := range files {
		rels = append(rels, f.RelPath)
	}
	require.NoError(t, <-errs)
	return rels
}

var jsExts = map[string]bool{"tsx": true, "ts": true, "jsx": true, "js": true}

func TestWalkDefaultIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/Button.tsx", "export const Button = () => null;")
	writeFile(t, root, "src/util/format.ts", "export const f = 1;")
	writeFile(t, root, "src/types.d.ts", "declare const x: number;")
	writeFile(t, root, "src/styles.css", ".a {}")
	writeFile(t, root, "src/Empty.tsx", "")
	writeFile(t, root, "node_modules/react/index.js", "module.exports = {};")
	writeFile(t, root, "dist/bundle.js", "var a;")

	got := collect(t, root, Options{Extensions: jsExts})
	assert.Equal(t, []string{"src/Button.tsx", "src/util/format.ts"}, got)

	_, err := os.Stat(filepath.Join(root, IgnoreFile))
	assert.True(t, os.IsNotExist(err), "walking must not write into the project")
}

func TestWalkIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, IgnoreFile, "# generated code\nsrc/generated/\n*.stories.tsx\n")
	writeFile(t, root, "src/Card.tsx", "x")
	writeFile(t, root, "src/Card.stories.tsx", "x")
	writeFile(t, root, "src/generated/Api.ts", "x")
	writeFile(t, root, "node_modules/lib/index.js", "x")

	got := collect(t, root, Options{Extensions: jsExts, Ignore: []string{"node_modules"}})
	assert.Equal(t, []string{"src/Card.tsx"}, got)
}

func TestIgnored(t *testing.T) {
	patterns := []string{"node_modules", "legacy/old", "*.min.js"}

	assert.True(t, Ignored("node_modules", "a/node_modules", patterns))
	assert.True(t, Ignored("x.ts", "legacy/old/x.ts", patterns))
	assert.False(t, Ignored("older", "legacy/older", patterns))
	assert.True(t, Ignored("vendor.min.js", "static/vendor.min.js", patterns))
	assert.False(t, Ignored("App.tsx", "src/App.tsx", patterns))
}

func TestWalkMissingRoot(t *testing.T) {
	files, errs := Walk(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{Extensions: jsExts})
	for range files {
	}
	assert.Error(t, <-errs)
}
