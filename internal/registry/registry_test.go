package registry

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EveryDescriptorIsRoutable(t *testing.T) {
	r := Default()

	require.NoError(t, r.Validate())
	for _, d := range r.Descriptors() {
		path, err := r.Resolve(d.Name)
		require.NoError(t, err, d.Name)
		assert.NotEmpty(t, path)
		assert.NotEqual(t, d.Name, path, "short name must be aliased to a route")
		assert.Regexp(t, namePattern, d.Name)
	}
}

func TestDefault_OrderAndRoutes(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{LocationWKT, SpecialtiesAll, SpecialistFind}, r.Names())

	tests := map[string]string{
		"location-wkt":    "location/wkt",
		"specialties-all": "specialty/all",
		"specialist-find": "specialist/find",
	}
	for name, want := range tests {
		got, err := r.Resolve(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestResolve_Unknown(t *testing.T) {
	_, err := Default().Resolve("specialist/find")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFunction))
	assert.Contains(t, err.Error(), "specialist/find")
}

func TestDescriptors_Schema(t *testing.T) {
	descriptors := Default().Descriptors()
	require.Len(t, descriptors, 3)

	raw, err := json.Marshal(descriptors[2])
	require.NoError(t, err)

	var decoded struct {
		Name       string `json:"name"`
		Parameters struct {
			Schema      string                       `json:"$schema"`
			Type        string                       `json:"type"`
			Description string                       `json:"description"`
			Required    []string                     `json:"required"`
			Properties  map[string]map[string]string `json:"properties"`
		} `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, SpecialistFind, decoded.Name)
	assert.Empty(t, decoded.Parameters.Schema)
	assert.Equal(t, "object", decoded.Parameters.Type)
	assert.Equal(t, "Payload containing user preferences when searching for a specialist", decoded.Parameters.Description)
	assert.ElementsMatch(t, []string{"specialty_id", "radius", "user_location"}, decoded.Parameters.Required)
	assert.Equal(t, "integer", decoded.Parameters.Properties["radius"]["type"])
	assert.Contains(t, decoded.Parameters.Properties["radius"]["description"], "METERS")
	assert.Contains(t, decoded.Parameters.Properties["user_location"]["description"], "POINT(")
}

func TestDescriptors_ReturnsCopy(t *testing.T) {
	r := Default()
	d := r.Descriptors()
	d[0].Name = "mutated"

	assert.Equal(t, LocationWKT, r.Descriptors()[0].Name)
}

func TestNew_Rejects(t *testing.T) {
	valid := Function{Descriptor: Descriptor{Name: "ok"}, Path: "ok/route"}

	tests := []struct {
		name      string
		functions []Function
		wantErr   string
	}{
		{"empty table", nil, "at least one"},
		{"slash in name", []Function{{Descriptor: Descriptor{Name: "specialist/find"}, Path: "specialist/find"}}, "does not match"},
		{"name too long", []Function{{Descriptor: Descriptor{Name: strings.Repeat("a", 65)}, Path: "x"}}, "does not match"},
		{"duplicate", []Function{valid, valid}, "registered twice"},
		{"missing path", []Function{{Descriptor: Descriptor{Name: "nopath"}}}, "no backend path"},
		{"absolute path", []Function{{Descriptor: Descriptor{Name: "abs"}, Path: "/abs"}}, "relative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.functions...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew() })
}
