package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsDefaults(t *testing.T) {
	var o Options

	assert.Equal(t, "type", o.TypeKey())
	key, ok := o.VersionKey()
	assert.True(t, ok)
	assert.Equal(t, "__v", key)
	assert.Equal(t, "", o.Collection())
	assert.Equal(t, StrictDrop, o.Strict())
	assert.True(t, o.Minimize())
	assert.True(t, o.ValidateBeforeSave())
	assert.True(t, o.IDVirtual())
	assert.True(t, o.AutoID())
	assert.Equal(t, TransformOptions{VersionKey: true, Minimize: true}, o.ToObject())
	assert.Equal(t, TransformOptions{VersionKey: true, Minimize: true}, o.ToJSON())
}

func TestOptionsVersionKey(t *testing.T) {
	key, ok := Options{"versionKey": "_rev"}.VersionKey()
	assert.True(t, ok)
	assert.Equal(t, "_rev", key)

	_, ok = Options{"versionKey": false}.VersionKey()
	assert.False(t, ok)

	_, ok = Options{"versionKey": ""}.VersionKey()
	assert.False(t, ok)

	key, ok = Options{"versionKey": true}.VersionKey()
	assert.True(t, ok)
	assert.Equal(t, "__v", key)
}

func TestOptionsStrict(t *testing.T) {
	assert.Equal(t, StrictDrop, Options{"strict": true}.Strict())
	assert.Equal(t, StrictOff, Options{"strict": false}.Strict())
	assert.Equal(t, StrictThrow, Options{"strict": "throw"}.Strict())
	assert.Equal(t, StrictDrop, Options{"strict": "bogus"}.Strict())
}

func TestOptionsTransform(t *testing.T) {
	o := Options{
		"minimize": false,
		"toJSON":   map[string]any{"virtuals": true, "versionKey": false},
		"toObject": TransformOptions{Virtuals: true},
	}

	assert.Equal(t, TransformOptions{Virtuals: true, VersionKey: false, Minimize: false}, o.ToJSON())
	assert.Equal(t, TransformOptions{Virtuals: true}, o.ToObject())
}

func TestOptionsClone(t *testing.T) {
	o := Options{"collection": "people"}
	c := o.Clone()
	c["collection"] = "pets"

	assert.Equal(t, "people", o.Collection())
	assert.Equal(t, "pets", c.Collection())

	v, ok := o.Get("collection")
	assert.True(t, ok)
	assert.Equal(t, "people", v)
}
