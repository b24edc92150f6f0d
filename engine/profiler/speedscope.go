package profiler

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/fsys"
)

// speedscope evented profile, https://www.speedscope.app/file-format-schema.json
type ssFile struct {
	Schema             string      `json:"$schema"`
	Shared             ssShared    `json:"shared"`
	Profiles           []ssProfile `json:"profiles"`
	ActiveProfileIndex int         `json:"activeProfileIndex"`
	Exporter           string      `json:"exporter,omitempty"`
	Name               string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"` // "evented"
	Name       string    `json:"name"`
	Unit       string    `json:"unit"` // "microseconds"
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"`  // "O" or "C"
	At    int64  `json:"at"`    // µs since first event
	Frame int    `json:"frame"` // index into Shared.Frames
}

// WriteSpeedscope dumps the recorded events to path as a speedscope file.
func WriteSpeedscope(path, name string) error {
	const op = "profiler.WriteSpeedscope"
	doc, err := buildCapture(ring.snapshot(), snapshotNames(), name)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.Wrap(errs.SystemBase, op, err)
	}
	return fsys.WriteFile(path, b)
}

// OpenGraph writes a capture into the temp dir and launches speedscope on
// it. The file path is returned even when speedscope is not installed.
func OpenGraph(name string) (string, error) {
	path := filepath.Join(os.TempDir(), "forge.profile.speedscope.json")
	if err := WriteSpeedscope(path, name); err != nil {
		return "", err
	}
	cmd := exec.Command("speedscope", path)
	cmd.SysProcAttr = hideWindowAttr()
	if err := cmd.Start(); err != nil {
		return path, errs.Wrap(errs.SystemInitFailed, "profiler.OpenGraph", err)
	}
	return path, nil
}

func buildCapture(evs []event, scopes []string, name string) (*ssFile, error) {
	const op = "profiler.WriteSpeedscope"
	if len(evs) == 0 {
		return nil, errs.New(errs.InvalidOperation, op, "no events recorded")
	}

	frames := make([]ssFrame, len(scopes))
	for i, s := range scopes {
		frames[i] = ssFrame{Name: s}
	}

	base := evs[0].at
	out := make([]ssEvent, 0, len(evs)+16)
	stack := make([]int, 0, 64)
	last, end := int64(0), int64(0)

	for _, e := range evs {
		at := (e.at - base) / 1000
		if at < last {
			at = last // keep µs monotonic
		}
		if e.open {
			out = append(out, ssEvent{Type: "O", At: at, Frame: e.scope})
			stack = append(stack, e.scope)
		} else {
			// close without a matching open, e.g. overwritten in the ring
			if len(stack) == 0 || stack[len(stack)-1] != e.scope {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, ssEvent{Type: "C", At: at, Frame: e.scope})
		}
		last = at
		if at > end {
			end = at
		}
	}

	// speedscope wants balanced events; close what is still open.
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, ssEvent{Type: "C", At: last, Frame: stack[i]})
	}

	return &ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: frames},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     name,
			Unit:     "microseconds",
			EndValue: end,
			Events:   out,
		}},
		Exporter: "forge-profiler",
		Name:     name,
	}, nil
}
