package media

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"time"

	"github.com/beevik/etree"
)

var xmpNamespaces = [][2]string{
	{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
	{"xmp", "http://ns.adobe.com/xap/1.0/"},
	{"dc", "http://purl.org/dc/elements/1.1/"},
	{"lightroom", "http://ns.adobe.com/lightroom/1.0/"},
	{"exif", "http://ns.adobe.com/exif/1.0/"},
}

// SidecarUpdate describes the properties merged into an XMP sidecar.
type SidecarUpdate struct {
	Keywords  []string
	Taken     *time.Time
	Latitude  *float64
	Longitude *float64
}

// WriteSidecar creates or updates the XMP file at path. Existing keywords
// are kept and merged with the new ones; other properties are preserved.
func WriteSidecar(path string, update SidecarUpdate) error {
	doc, err := loadSidecar(path)
	if err != nil {
		return err
	}

	desc := doc.FindElement("//rdf:Description")
	if desc == nil {
		return fmt.Errorf("xmp %s: no rdf:Description element", path)
	}
	ensureNamespaces(desc)

	keywords := mergeKeywords(sidecarKeywords(doc), update.Keywords)
	for _, name := range []string{"dc:subject", "lightroom:hierarchicalSubject"} {
		for _, el := range doc.FindElements("//" + name) {
			if parent := el.Parent(); parent != nil {
				parent.RemoveChild(el)
			}
		}
		if len(keywords) == 0 {
			continue
		}
		bag := desc.CreateElement(name).CreateElement("rdf:Bag")
		for _, k := range keywords {
			bag.CreateElement("rdf:li").SetText(k)
		}
	}

	if update.Taken != nil {
		setProperty(desc, "exif:DateTimeOriginal", update.Taken.Format(time.RFC3339))
	}
	if update.Latitude != nil && update.Longitude != nil {
		setProperty(desc, "exif:GPSLatitude", formatXMPCoordinate(*update.Latitude, "N", "S"))
		setProperty(desc, "exif:GPSLongitude", formatXMPCoordinate(*update.Longitude, "E", "W"))
	}

	doc.Indent(1)
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("write xmp %s: %w", path, err)
	}
	return nil
}

// ReadSidecarKeywords returns the sorted keywords stored in an XMP file.
func ReadSidecarKeywords(path string) ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("read xmp %s: %w", path, err)
	}
	return mergeKeywords(sidecarKeywords(doc), nil), nil
}

func loadSidecar(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	err := doc.ReadFromFile(path)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, fs.ErrNotExist):
		return newSidecar(), nil
	default:
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("read xmp %s: %w", path, err)
		}
		return nil, fmt.Errorf("parse xmp %s: %w", path, err)
	}
}

func newSidecar() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	meta := doc.CreateElement("x:xmpmeta")
	meta.CreateAttr("xmlns:x", "adobe:ns:meta/")
	meta.CreateAttr("x:xmptk", "dive-tagger")
	rdf := meta.CreateElement("rdf:RDF")
	rdf.CreateAttr("xmlns:rdf", xmpNamespaces[0][1])
	desc := rdf.CreateElement("rdf:Description")
	desc.CreateAttr("rdf:about", "")
	return doc
}

func ensureNamespaces(desc *etree.Element) {
	for _, ns := range xmpNamespaces {
		if !namespaceDeclared(desc, ns[0]) {
			desc.CreateAttr("xmlns:"+ns[0], ns[1])
		}
	}
}

func namespaceDeclared(el *etree.Element, prefix string) bool {
	for e := el; e != nil; e = e.Parent() {
		if e.SelectAttr("xmlns:"+prefix) != nil {
			return true
		}
	}
	return false
}

func sidecarKeywords(doc *etree.Document) []string {
	var out []string
	for _, path := range []string{"//dc:subject//rdf:li", "//lightroom:hierarchicalSubject//rdf:li"} {
		for _, li := range doc.FindElements(path) {
			out = append(out, li.Text())
		}
	}
	return out
}

// mergeKeywords returns the sorted union of both lists without blanks.
func mergeKeywords(existing, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	var out []string
	for _, list := range [][]string{existing, added} {
		for _, k := range list {
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// setProperty updates an XMP simple property, which may be stored either as
// an attribute of rdf:Description or as a child element.
func setProperty(desc *etree.Element, name, value string) {
	if desc.SelectAttr(name) != nil {
		desc.CreateAttr(name, value)
		return
	}
	el := desc.SelectElement(name)
	if el == nil {
		el = desc.CreateElement(name)
	}
	el.SetText(value)
}

// formatXMPCoordinate renders decimal degrees in the XMP GPSCoordinate form
// "DDD,MM.mmmmk".
func formatXMPCoordinate(v float64, pos, neg string) string {
	dir := pos
	if v < 0 {
		dir = neg
	}
	abs := math.Abs(v)
	deg := math.Floor(abs)
	minutes := math.Round((abs-deg)*60*10000) / 10000
	if minutes >= 60 {
		deg++
		minutes -= 60
	}
	return fmt.Sprintf("%d,%.4f%s", int(deg), minutes, dir)
}
