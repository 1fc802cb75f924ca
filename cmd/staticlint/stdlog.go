package main

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// StdLogAnalyzer reports calls into the standard library log package.
// Structured logging goes through the injected zap logger.
var StdLogAnalyzer = &analysis.Analyzer{
	Name:     "stdloglint",
	Doc:      "reports use of the standard library log package",
	Run:      runStdLog,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runStdLog(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		if isPkgFunc(pass, call, "log") {
			pass.Reportf(call.Pos(), "standard library log call %s, use the zap logger", render(pass.Fset, call.Fun))
		}
	})

	return nil, nil
}
