package transform

import (
	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/registry"
)

// File is a named blob moving through the pipeline.
type File struct {
	Name  string
	Bytes []byte
}

// Operation maps one File to zero or one File. A nil result with a nil error
// means the operation produced nothing.
type Operation interface {
	Apply(file File) (*File, error)
}

// Factory builds an Operation from its declaration.
type Factory func(decl config.TransformDecl) (Operation, error)

var operations = registry.New[Factory]("transform operation")

// Register makes an operation type available to Build.
func Register(name string, factory Factory) error {
	return operations.Register(name, factory)
}

// Pipeline applies its operations in order.
type Pipeline struct {
	ops []Operation
}

// New creates a pipeline from already built operations.
func New(ops ...Operation) Pipeline {
	return Pipeline{ops: ops}
}

// Build resolves every declaration through the operation registry.
func Build(decls []config.TransformDecl) (Pipeline, error) {
	ops := make([]Operation, 0, len(decls))
	for i, decl := range decls {
		factory, err := operations.Get(decl.Type)
		if err != nil {
			return Pipeline{}, errors.Wrapf(err, errors.ErrTransform, "transform step %d", i)
		}
		op, err := factory(decl)
		if err != nil {
			return Pipeline{}, errors.Wrapf(err, errors.ErrTransform, "transform step %d (%s)", i, decl.Type)
		}
		ops = append(ops, op)
	}
	return Pipeline{ops: ops}, nil
}

// Len returns the number of operations.
func (p Pipeline) Len() int {
	return len(p.ops)
}

// Apply runs the pipeline. An empty pipeline returns the input unchanged.
func (p Pipeline) Apply(file File) (*File, error) {
	current := &file
	for _, op := range p.ops {
		next, err := op.Apply(*current)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		current = next
	}
	return current, nil
}
