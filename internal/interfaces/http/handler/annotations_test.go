package handler

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ginHandlerMethods returns every exported method taking a single
// *gin.Context, keyed by Receiver.Method.
func ginHandlerMethods(t *testing.T) map[string]*ast.FuncDecl {
	t.Helper()
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, ".", func(fi fs.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	require.NoError(t, err)

	methods := map[string]*ast.FuncDecl{}
	for _, pkg := range pkgs {
		for _, file := range pkg.Files {
			for _, decl := range file.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok || fn.Recv == nil || !fn.Name.IsExported() || len(fn.Type.Params.List) != 1 {
					continue
				}
				star, ok := fn.Type.Params.List[0].Type.(*ast.StarExpr)
				if !ok {
					continue
				}
				sel, ok := star.X.(*ast.SelectorExpr)
				if !ok || sel.Sel.Name != "Context" {
					continue
				}
				methods[receiverName(fn)+"."+fn.Name.Name] = fn
			}
		}
	}
	return methods
}

func receiverName(fn *ast.FuncDecl) string {
	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if idx, ok := expr.(*ast.IndexListExpr); ok {
		expr = idx.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return "?"
}

func TestHandlers_CarryRouteAnnotations(t *testing.T) {
	methods := ginHandlerMethods(t)
	require.NotEmpty(t, methods)

	ids := map[string]string{}
	for name, fn := range methods {
		t.Run(name, func(t *testing.T) {
			require.NotNil(t, fn.Doc, "missing doc block")
			doc := fn.Doc.Text()
			assert.True(t, strings.HasPrefix(doc, fn.Name.Name+" godoc"), "doc must open with %q", fn.Name.Name+" godoc")
			for _, tag := range []string{"@ID", "@Summary", "@Tags", "@Produce", "@Success", "@Router"} {
				assert.Contains(t, doc, tag)
			}

			for _, line := range strings.Split(doc, "\n") {
				if id, ok := strings.CutPrefix(line, "@ID"); ok {
					id = strings.TrimSpace(id)
					if prev, dup := ids[id]; dup {
						t.Errorf("@ID %s used by %s and %s", id, prev, name)
					}
					ids[id] = name
				}
			}
		})
	}

	for _, name := range []string{"AuthHandler.Login", "CashRegistryHandler.Verify", "SaleHandler.GetReceipt", "CRUDHandler.Update", "SystemHandler.Health"} {
		assert.Contains(t, methods, name)
	}
}
