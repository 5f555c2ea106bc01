package generatexdmf

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

const doctype = `<!DOCTYPE Xdmf SYSTEM "Xdmf.dtd" []>` + "\n"

type document struct {
	XMLName xml.Name `xml:"Xdmf"`
	Version string   `xml:"Version,attr"`
	Domain  domain   `xml:"Domain"`
}

type domain struct {
	Grid grid `xml:"Grid"`
}

type grid struct {
	Name           string      `xml:"Name,attr"`
	GridType       string      `xml:"GridType,attr"`
	CollectionType string      `xml:"CollectionType,attr,omitempty"`
	Time           *timeValue  `xml:"Time,omitempty"`
	Grids          []grid      `xml:"Grid"`
	Topology       *topology   `xml:"Topology,omitempty"`
	Geometry       *geometry   `xml:"Geometry,omitempty"`
	Attributes     []attribute `xml:"Attribute"`
}

type timeValue struct {
	Value string `xml:"Value,attr"`
}

type topology struct {
	TopologyType     string   `xml:"TopologyType,attr"`
	NumberOfElements int      `xml:"NumberOfElements,attr"`
	DataItem         dataItem `xml:"DataItem"`
}

type geometry struct {
	GeometryType string     `xml:"GeometryType,attr"`
	DataItems    []dataItem `xml:"DataItem"`
}

type attribute struct {
	Name          string   `xml:"Name,attr"`
	AttributeType string   `xml:"AttributeType,attr"`
	Center        string   `xml:"Center,attr"`
	DataItem      dataItem `xml:"DataItem"`
}

type dataItem struct {
	Dimensions string `xml:"Dimensions,attr"`
	NumberType string `xml:"NumberType,attr"`
	Precision  int    `xml:"Precision,attr"`
	Format     string `xml:"Format,attr"`
	Path       string `xml:",chardata"`
}

// cellShapes maps the spatial dimension to the XDMF cell topology, the
// number of nodes per cell and the geometry layout
var cellShapes = map[int]struct {
	topology string
	nodes    int
	geometry string
}{
	1: {topology: "Polyline", nodes: 2, geometry: "X"},
	2: {topology: "Quadrilateral", nodes: 4, geometry: "X_Y"},
	3: {topology: "Hexahedron", nodes: 8, geometry: "X_Y_Z"},
}

func doubles(points int, path string) dataItem {
	return dataItem{
		Dimensions: strconv.Itoa(points),
		NumberType: "Double",
		Precision:  8,
		Format:     "HDF5",
		Path:       path,
	}
}

// render writes the XDMF document for the given time steps
func render(w io.Writer, steps []step) error {
	temporal := grid{
		Name:           "Evolution",
		GridType:       "Collection",
		CollectionType: "Temporal",
	}
	for _, s := range steps {
		spatial := grid{
			Name:           "Time",
			GridType:       "Collection",
			CollectionType: "Spatial",
			Time:           &timeValue{Value: strconv.FormatFloat(s.time, 'g', -1, 64)},
		}
		for _, p := range s.pieces {
			shape := cellShapes[len(p.coordinates)]
			g := grid{
				Name:     p.name,
				GridType: "Uniform",
				Topology: &topology{
					TopologyType:     shape.topology,
					NumberOfElements: p.cells,
					DataItem: dataItem{
						Dimensions: fmt.Sprintf("%d %d", p.cells, shape.nodes),
						NumberType: "Int",
						Precision:  4,
						Format:     "HDF5",
						Path:       p.connectivity,
					},
				},
				Geometry: &geometry{GeometryType: shape.geometry},
			}
			for _, c := range p.coordinates {
				g.Geometry.DataItems = append(g.Geometry.DataItems, doubles(p.points, c))
			}
			for _, f := range p.fields {
				g.Attributes = append(g.Attributes, attribute{
					Name:          f.name,
					AttributeType: "Scalar",
					Center:        "Node",
					DataItem:      doubles(p.points, f.path),
				})
			}
			spatial.Grids = append(spatial.Grids, g)
		}
		temporal.Grids = append(temporal.Grids, spatial)
	}

	doc := document{Version: "2.0", Domain: domain{Grid: temporal}}
	if _, err := io.WriteString(w, xml.Header+doctype); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
