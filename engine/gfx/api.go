// Package gfx holds the backend-neutral rendering types: the graphics API
// selection, clear and viewport state, and vertex buffer layouts.
package gfx

import (
	"strings"

	"github.com/hubastard/forge/engine/errs"
)

type GraphicsAPI uint8

const (
	APINone GraphicsAPI = iota
	APIOpenGL
	APIVulkan
	APIDirectX12
	APIMetal
	APIWebGL
)

var apiNames = [...]string{"None", "OpenGL", "Vulkan", "DirectX12", "Metal", "WebGL"}

func (a GraphicsAPI) String() string {
	if int(a) < len(apiNames) {
		return apiNames[a]
	}
	return "None"
}

// Supported reports whether this build has a backend for a.
func (a GraphicsAPI) Supported() bool { return a == APIOpenGL }

// ParseAPI accepts the API names case-insensitively, plus "gl" and
// "opengl" for OpenGL.
func ParseAPI(s string) (GraphicsAPI, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gl", "opengl":
		return APIOpenGL, nil
	}
	for i, n := range apiNames {
		if strings.EqualFold(n, s) {
			return GraphicsAPI(i), nil
		}
	}
	return APINone, errs.New(errs.InvalidConfiguration, "gfx.ParseAPI", "unknown graphics API %q", s)
}

// SelectAPI validates a requested API. Only OpenGL has a backend; every
// other API, including None, is rejected.
func SelectAPI(a GraphicsAPI) (GraphicsAPI, error) {
	if !a.Supported() {
		return APINone, errs.New(errs.InvalidConfiguration, "gfx.SelectAPI", "graphics API %s is not supported", a)
	}
	return a, nil
}

// AvailableAPIs lists the APIs this build can drive.
func AvailableAPIs() []GraphicsAPI {
	var out []GraphicsAPI
	for a := APIOpenGL; int(a) < len(apiNames); a++ {
		if a.Supported() {
			out = append(out, a)
		}
	}
	return out
}
