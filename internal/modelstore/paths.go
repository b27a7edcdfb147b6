package modelstore

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
)

// Ext is the file extension of every stored value.
const Ext = ".msgpack"

// Paths returns the model path template (with one %d verb for the index),
// the metadata path and the manifest path for tag under root.
func Paths(root, tag string) (modelTemplate, metaPath, manifestPath string) {
	modelTemplate = path.Join(root, tag+"_%d"+Ext)
	metaPath = path.Join(root, tag+"_meta"+Ext)
	manifestPath = path.Join(root, tag+"_manifest"+Ext)
	return modelTemplate, metaPath, manifestPath
}

// ModelPath returns the path of the i-th model of tag under root.
func ModelPath(root, tag string, i int) string {
	tmpl, _, _ := Paths(root, tag)
	return fmt.Sprintf(tmpl, i)
}

// modelIndex matches "<tag>_<i>.msgpack" and returns i.
func modelIndex(tag string) func(name string) (int, bool) {
	re := regexp.MustCompile("^" + regexp.QuoteMeta(tag) + `_(\d+)` + regexp.QuoteMeta(Ext) + "$")
	return func(name string) (int, bool) {
		m := re.FindStringSubmatch(name)
		if m == nil {
			return 0, false
		}
		i, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return i, true
	}
}
