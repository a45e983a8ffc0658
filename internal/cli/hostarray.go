package cli

import (
	"github.com/google/uuid"

	"github.com/quarrylabs/quarry/internal/scalarir"
)

// HostArray is the CLI's stand-in for a device array. The compiler only
// needs array metadata and an opaque handle; for compile-only workflows
// the handle is a freshly minted UUIDv7 string that an execution layer
// would replace with a real buffer reference.
//
// UUIDv7 embeds a timestamp, so handles sort by declaration time, which
// helps when reading argument plans.
type HostArray struct {
	name   string
	elem   scalarir.ElemType
	length int
	handle string
}

// NewHostArray declares a placeholder array.
func NewHostArray(name string, elem scalarir.ElemType, length int) *HostArray {
	return &HostArray{
		name:   name,
		elem:   elem,
		length: length,
		handle: uuid.Must(uuid.NewV7()).String(),
	}
}

// Name returns the pipeline-file name of the array.
func (a *HostArray) Name() string { return a.name }

// Elem returns the element type.
func (a *HostArray) Elem() scalarir.ElemType { return a.elem }

// Len returns the logical element count.
func (a *HostArray) Len() int { return a.length }

// ElemSize returns the element byte size.
func (a *HostArray) ElemSize() int { return a.elem.Size() }

// Handle returns the opaque handle.
func (a *HostArray) Handle() any { return a.handle }
