package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// XML element and attribute names of the page transformation format.
const (
	xmlRoot      = "PageTransformation"
	xmlAddOn     = "AddOns/AddOn"
	xmlWebPart   = "WebParts/WebPart"
	xmlProperty  = "Properties/Property"
	xmlMappings  = "Mappings"
	xmlMapping   = "Mapping"
	attrName     = "Name"
	attrType     = "Type"
	attrFuncs    = "Functions"
	attrSelector = "Selector"
	attrDefault  = "Default"
	attrDynamic  = "DynamicProperties"
	attrPath     = "Path"
	attrAssembly = "Assembly"
)

// ParseXML parses a page transformation mapping document.
func ParseXML(data []byte) (*File, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != xmlRoot {
		return nil, fmt.Errorf("%w: root element must be <%s>", ErrInvalidXML, xmlRoot)
	}

	f := &File{}
	for _, el := range root.FindElements(xmlAddOn) {
		decl := PluginDeclaration{
			Name:     el.SelectAttrValue(attrName, ""),
			TypeName: el.SelectAttrValue(attrType, ""),
			Path:     el.SelectAttrValue(attrPath, el.SelectAttrValue(attrAssembly, "")),
		}
		if decl.Name == "" {
			return nil, fmt.Errorf("%w: <AddOn> without %s", ErrInvalidXML, attrName)
		}
		f.Plugins = append(f.Plugins, decl)
	}

	for _, el := range root.FindElements(xmlWebPart) {
		t, err := parseXMLTemplate(el)
		if err != nil {
			return nil, err
		}
		f.Templates = append(f.Templates, t)
	}
	return f, nil
}

func parseXMLTemplate(el *etree.Element) (Template, error) {
	t := Template{Type: el.SelectAttrValue(attrType, "")}
	if t.Type == "" {
		return t, fmt.Errorf("%w: <WebPart> without %s", ErrInvalidXML, attrType)
	}

	dynamic, err := xmlBool(el, attrDynamic)
	if err != nil {
		return t, fmt.Errorf("%w: web part %s: %v", ErrInvalidXML, t.Type, err)
	}
	t.Dynamic = dynamic

	for _, p := range el.FindElements(xmlProperty) {
		prop := PropertyMapping{
			Name:      p.SelectAttrValue(attrName, ""),
			Type:      strings.ToLower(p.SelectAttrValue(attrType, TypeString)),
			Functions: strings.TrimSpace(p.SelectAttrValue(attrFuncs, "")),
		}
		if prop.Name == "" {
			return t, fmt.Errorf("%w: web part %s has a property without %s", ErrInvalidXML, t.Type, attrName)
		}
		t.Properties = append(t.Properties, prop)
	}

	if mappings := el.SelectElement(xmlMappings); mappings != nil {
		t.Selector = strings.TrimSpace(mappings.SelectAttrValue(attrSelector, ""))
		for _, m := range mappings.SelectElements(xmlMapping) {
			isDefault, err := xmlBool(m, attrDefault)
			if err != nil {
				return t, fmt.Errorf("%w: web part %s: %v", ErrInvalidXML, t.Type, err)
			}
			t.Mappings = append(t.Mappings, MappingOption{
				Name:    m.SelectAttrValue(attrName, ""),
				Default: isDefault,
			})
		}
	}
	return t, nil
}

func xmlBool(el *etree.Element, attr string) (bool, error) {
	v := el.SelectAttrValue(attr, "")
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false, fmt.Errorf("attribute %s=%q is not a boolean", attr, v)
	}
	return b, nil
}
