package shader

import (
	"fmt"
	"log/slog"
)

// ResourceKind classifies a reflected binding.
type ResourceKind uint8

const (
	UniformBuffer ResourceKind = iota
	StorageBuffer
	Sampler
	Input
	Output
	ResourceUnknown
)

var resourceKindNames = [...]string{"UniformBuffer", "StorageBuffer", "Sampler", "Input", "Output", "Unknown"}

func (k ResourceKind) String() string {
	if int(k) < len(resourceKindNames) {
		return resourceKindNames[k]
	}
	return "Unknown"
}

// Resource is one reflected binding. Set is 0 for backends without
// descriptor sets; Size and MemberCount apply to buffers, Location to stage
// inputs and outputs.
type Resource struct {
	Kind        ResourceKind
	Name        string
	Binding     uint32
	Set         uint32
	Size        uint32
	MemberCount uint32
	Location    uint32
}

func (r Resource) String() string {
	switch r.Kind {
	case Input, Output:
		return fmt.Sprintf("%s %q location=%d size=%d", r.Kind, r.Name, r.Location, r.Size)
	case Sampler:
		return fmt.Sprintf("%s %q set=%d binding=%d", r.Kind, r.Name, r.Set, r.Binding)
	default:
		return fmt.Sprintf("%s %q set=%d binding=%d size=%d members=%d",
			r.Kind, r.Name, r.Set, r.Binding, r.Size, r.MemberCount)
	}
}

// Reflection is the set of resources of a whole program, one collection
// per kind. Names are unique within a collection and (binding, set) pairs
// are unique across the buffer and sampler collections.
type Reflection struct {
	uniformBuffers []Resource
	storageBuffers []Resource
	samplers       []Resource
	inputs         []Resource
	outputs        []Resource

	logger *slog.Logger
}

func (r *Reflection) UniformBuffers() []Resource { return r.uniformBuffers }
func (r *Reflection) StorageBuffers() []Resource { return r.storageBuffers }
func (r *Reflection) Samplers() []Resource       { return r.samplers }
func (r *Reflection) StageInputs() []Resource    { return r.inputs }
func (r *Reflection) StageOutputs() []Resource   { return r.outputs }

func (r *Reflection) collection(k ResourceKind) *[]Resource {
	switch k {
	case UniformBuffer:
		return &r.uniformBuffers
	case StorageBuffer:
		return &r.storageBuffers
	case Sampler:
		return &r.samplers
	case Input:
		return &r.inputs
	case Output:
		return &r.outputs
	}
	return nil
}

// add appends res to its collection. A name already present is skipped, so
// a block declared by several stages is listed once. A buffer or sampler
// whose (binding, set) is taken by another name is rejected.
func (r *Reflection) add(res Resource) bool {
	coll := r.collection(res.Kind)
	if coll == nil {
		return false
	}
	for _, have := range *coll {
		if have.Name == res.Name {
			return false
		}
	}
	if res.Kind == UniformBuffer || res.Kind == StorageBuffer || res.Kind == Sampler {
		if other, ok := r.FindResourceByBinding(res.Binding, res.Set); ok {
			if r.logger != nil {
				r.logger.Warn("shader binding conflict",
					"resource", res.Name, "other", other.Name, "binding", res.Binding, "set", res.Set)
			}
			return false
		}
	}
	*coll = append(*coll, res)
	return true
}

func has(coll []Resource, name string) bool {
	for _, r := range coll {
		if r.Name == name {
			return true
		}
	}
	return false
}

func (r *Reflection) HasUniformBuffer(name string) bool { return has(r.uniformBuffers, name) }
func (r *Reflection) HasStorageBuffer(name string) bool { return has(r.storageBuffers, name) }
func (r *Reflection) HasSampler(name string) bool       { return has(r.samplers, name) }

// FindResource looks name up in uniform buffers, storage buffers, samplers,
// stage inputs and stage outputs, in that order.
func (r *Reflection) FindResource(name string) (Resource, bool) {
	for _, coll := range [][]Resource{r.uniformBuffers, r.storageBuffers, r.samplers, r.inputs, r.outputs} {
		for _, res := range coll {
			if res.Name == name {
				return res, true
			}
		}
	}
	return Resource{}, false
}

// FindResourceByBinding looks up a buffer or sampler by (binding, set).
// Stage inputs and outputs have no binding and are never returned.
func (r *Reflection) FindResourceByBinding(binding, set uint32) (Resource, bool) {
	for _, coll := range [][]Resource{r.uniformBuffers, r.storageBuffers, r.samplers} {
		for _, res := range coll {
			if res.Binding == binding && res.Set == set {
				return res, true
			}
		}
	}
	return Resource{}, false
}

// All returns every resource, collections in lookup order.
func (r *Reflection) All() []Resource {
	out := make([]Resource, 0, len(r.uniformBuffers)+len(r.storageBuffers)+len(r.samplers)+len(r.inputs)+len(r.outputs))
	out = append(out, r.uniformBuffers...)
	out = append(out, r.storageBuffers...)
	out = append(out, r.samplers...)
	out = append(out, r.inputs...)
	return append(out, r.outputs...)
}
