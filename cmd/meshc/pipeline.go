package main

import (
	"fmt"
	"os"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/clauses"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/infer"
	"github.com/snowdamiz/mesh-lang-sub001/internal/lexer"
	"github.com/snowdamiz/mesh-lang-sub001/internal/parser"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// checkedFile bundles a parsed file with the context/env its declarations
// were checked against, so a later pass (backend emission) can look up
// each function's resolved scheme without re-parsing or re-checking.
type checkedFile struct {
	file     *ast.File
	ctx      *infer.Ctx
	env      *tyenv.Env
	errs     []*errors.Report
	warnings []*errors.Report
}

// parseAndCheck runs the file through the lexer, parser, and
// clauses.CheckFile pass (spec §4.2, §4.6). Parser errors short-circuit
// before type-checking; each is wrapped as a structured GENERIC-code
// report under the "parser" phase (errors.NewGeneric).
func parseAndCheck(path string) (*checkedFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	l := lexer.New(string(src), path)
	p := parser.New(l)
	file := p.ParseFile()

	if perrs := p.Errors(); len(perrs) > 0 {
		reports := make([]*errors.Report, 0, len(perrs))
		for _, e := range perrs {
			reports = append(reports, errors.NewGeneric("parser", e))
		}
		return &checkedFile{file: file, errs: reports}, nil
	}

	env := tyenv.New()
	ctx, errs, warnings := clauses.CheckFile(env, file)
	return &checkedFile{file: file, ctx: ctx, env: env, errs: errs, warnings: warnings}, nil
}

// printReports renders each report as one line of its structured JSON
// form (spec's explicit non-goal: "no pretty-printed error rendering
// (errors are structured values)") to stdout.
func printReports(reports []*errors.Report) {
	for _, r := range reports {
		j, err := r.ToJSON(true)
		if err != nil {
			fmt.Fprintf(os.Stderr, `{"code":"INTERNAL","message":%q}`+"\n", err.Error())
			continue
		}
		fmt.Println(j)
	}
}
