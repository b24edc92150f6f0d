package shader

import "sort"

// StageKind identifies one stage of a shader program.
type StageKind uint8

const (
	StageUnknown StageKind = iota
	StageVertex
	StageFragment
	StageGeometry
	StageCompute
	StageTessControl
	StageTessEvaluation
)

var stageNames = [...]string{
	StageUnknown:        "Unknown",
	StageVertex:         "Vertex",
	StageFragment:       "Fragment",
	StageGeometry:       "Geometry",
	StageCompute:        "Compute",
	StageTessControl:    "TessControl",
	StageTessEvaluation: "TessEvaluation",
}

// String returns the display name used in logs and cache file names.
func (k StageKind) String() string {
	if int(k) < len(stageNames) {
		return stageNames[k]
	}
	return stageNames[StageUnknown]
}

// directive names accepted after #type; matching is case-sensitive.
var stageDirectives = map[string]StageKind{
	"vertex":         StageVertex,
	"fragment":       StageFragment,
	"geometry":       StageGeometry,
	"compute":        StageCompute,
	"tesscontrol":    StageTessControl,
	"tessevaluation": StageTessEvaluation,
}

// ParseStageKind maps a #type directive argument to its stage.
func ParseStageKind(name string) (StageKind, bool) {
	k, ok := stageDirectives[name]
	return k, ok
}

// Stages lists the concrete stages in pipeline order.
func Stages() []StageKind {
	return []StageKind{
		StageVertex, StageTessControl, StageTessEvaluation,
		StageGeometry, StageFragment, StageCompute,
	}
}

// order is the position of k in the pipeline, used to iterate maps stably.
func (k StageKind) order() int {
	for i, s := range Stages() {
		if s == k {
			return i
		}
	}
	return len(stageNames)
}

// Sources maps each stage present in a shader file to its source text.
type Sources map[StageKind]string

// Kinds returns the stages present, in pipeline order.
func (s Sources) Kinds() []StageKind { return sortedKinds(s) }

// Binaries maps each compiled stage to its intermediate binary.
type Binaries map[StageKind]Binary

// Kinds returns the stages present, in pipeline order.
func (b Binaries) Kinds() []StageKind { return sortedKinds(b) }

func sortedKinds[V any](m map[StageKind]V) []StageKind {
	out := make([]StageKind, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order() < out[j].order() })
	return out
}
