// Package bundle reads metadata out of an Android App Bundle without bundletool.
package bundle

import (
	"io"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ManifestEntry is where aapt2 stores the base module manifest, as a proto XmlNode.
const ManifestEntry = "base/manifest/AndroidManifest.xml"

const androidNamespace = "http://schemas.android.com/apk/res/android"

// Manifest is the subset of AndroidManifest.xml reported in preflight checks.
type Manifest struct {
	Package     string
	VersionCode string
	VersionName string
	MinSDK      string
	TargetSDK   string
}

// ReadManifest extracts and decodes the base manifest of an .aab.
func ReadManifest(aabPath string) (*Manifest, error) {
	r, err := zip.OpenReader(aabPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open bundle %s", aabPath)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != ManifestEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(err, "open manifest")
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Wrap(err, "read manifest")
		}
		return ParseManifest(data)
	}

	return nil, errors.Errorf("%s: bundle has no %s entry", aabPath, ManifestEntry)
}

// ParseManifest decodes a serialized aapt2 XmlNode holding <manifest>.
func ParseManifest(data []byte) (*Manifest, error) {
	root, err := parseNode(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode manifest")
	}
	if root == nil || root.name != "manifest" {
		return nil, errors.New("decode manifest: root element is not <manifest>")
	}

	m := &Manifest{
		Package:     root.attr("", "package"),
		VersionCode: root.attr(androidNamespace, "versionCode"),
		VersionName: root.attr(androidNamespace, "versionName"),
	}
	for _, child := range root.children {
		if child.name == "uses-sdk" {
			m.MinSDK = child.attr(androidNamespace, "minSdkVersion")
			m.TargetSDK = child.attr(androidNamespace, "targetSdkVersion")
		}
	}
	return m, nil
}

type xmlAttribute struct {
	namespaceURI string
	name         string
	value        string
}

type xmlElement struct {
	namespaceURI string
	name         string
	attributes   []xmlAttribute
	children     []*xmlElement
}

func (e *xmlElement) attr(namespaceURI, name string) string {
	for _, a := range e.attributes {
		if a.namespaceURI == namespaceURI && a.name == name {
			return a.value
		}
	}
	return ""
}

// Field numbers from aapt2's Resources.proto.
const (
	nodeElement = 1

	elementNamespaceURI = 2
	elementName         = 3
	elementAttribute    = 4
	elementChild        = 5

	attributeNamespaceURI = 1
	attributeName         = 2
	attributeValue        = 3
)

// parseNode returns the element of an XmlNode, or nil for a text node.
func parseNode(b []byte) (*xmlElement, error) {
	var elem *xmlElement
	err := walkFields(b, func(num protowire.Number, v []byte) error {
		if num != nodeElement {
			return nil
		}
		e, err := parseElement(v)
		if err != nil {
			return err
		}
		elem = e
		return nil
	})
	return elem, err
}

func parseElement(b []byte) (*xmlElement, error) {
	e := &xmlElement{}
	err := walkFields(b, func(num protowire.Number, v []byte) error {
		switch num {
		case elementNamespaceURI:
			e.namespaceURI = string(v)
		case elementName:
			e.name = string(v)
		case elementAttribute:
			a, err := parseAttribute(v)
			if err != nil {
				return err
			}
			e.attributes = append(e.attributes, a)
		case elementChild:
			child, err := parseNode(v)
			if err != nil {
				return err
			}
			if child != nil {
				e.children = append(e.children, child)
			}
		}
		return nil
	})
	return e, err
}

func parseAttribute(b []byte) (xmlAttribute, error) {
	var a xmlAttribute
	err := walkFields(b, func(num protowire.Number, v []byte) error {
		switch num {
		case attributeNamespaceURI:
			a.namespaceURI = string(v)
		case attributeName:
			a.name = string(v)
		case attributeValue:
			a.value = string(v)
		}
		return nil
	})
	return a, err
}

// walkFields calls fn for every length-delimited field in b and skips the rest.
func walkFields(b []byte, fn func(num protowire.Number, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := fn(num, v); err != nil {
			return err
		}
	}
	return nil
}
