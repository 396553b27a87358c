package topology

import (
	_ "embed"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE []byte

// DecodeCUE compiles a CUE document, unifies it with the #Pipeline schema,
// and decodes the concrete result. Errors carry the CUE source position.
func DecodeCUE(filename string, data []byte) (*Document, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, cueError("schema", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueError("compile", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Pipeline")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError("schema", err)
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return nil, cueError("decode", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// cueError keeps the first CUE error and its position.
func cueError(stage string, err error) error {
	e := &Error{Code: ErrCodeInvalidDocument, Message: "CUE " + stage + " failed", Err: err}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return e
	}
	first := errs[0]
	e.Err = first
	if pos := cueerrors.Positions(first); len(pos) > 0 {
		e.Pos = pos[0]
	}
	return e
}
