package cli

import (
	"errors"
	"io"
	"io/fs"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/builtin"
	"github.com/roach88/rea/internal/pipeline"
	"github.com/roach88/rea/internal/topology"
)

// loaded is a topology document imported into a ready pipeline.
type loaded struct {
	Doc      *topology.Document
	Pipeline *pipeline.Pipeline
	refs     map[uuid.UUID]string
}

// Ref returns the document id of an instance.
func (l *loaded) Ref(id uuid.UUID) string {
	if ref, ok := l.refs[id]; ok {
		return ref
	}
	return id.String()
}

// Order returns the per-step execution order as document ids.
func (l *loaded) Order() ([][]string, error) {
	order, err := l.Pipeline.ExecutionOrder()
	if err != nil {
		return nil, err
	}
	steps := make([][]string, len(order))
	for i, step := range order {
		steps[i] = make([]string, len(step))
		for j, id := range step {
			steps[i][j] = l.Ref(id)
		}
	}
	return steps, nil
}

// loadTopology reads the topology file at path, reporting failures through f.
func loadTopology(f *OutputFormatter, path string) (*topology.Document, error) {
	f.VerboseLog("Loading topology %s", path)
	doc, err := topology.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, "topology not found", err)
	}
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to load topology", err)
	}
	return doc, nil
}

// importTopology builds the pipeline described by doc against the builtin
// catalog. Render output is written to out. exit is the exit code used when
// the document is rejected.
func importTopology(f *OutputFormatter, exit int, doc *topology.Document, out io.Writer, opts topology.ImportOptions) (*loaded, error) {
	p, refs, err := topology.Import(doc, builtin.NewCatalog(out), opts)
	if err != nil {
		return nil, f.Fail(exit, ErrCodeImportFailed, "invalid pipeline", err)
	}
	l := &loaded{Doc: doc, Pipeline: p, refs: make(map[uuid.UUID]string, len(refs))}
	for ref, id := range refs {
		l.refs[id] = ref
	}
	f.VerboseLog("Imported %d instance(s), %d connection(s), %d step(s)",
		len(doc.Instances), len(doc.Connections), len(doc.Baseline))
	return l, nil
}
