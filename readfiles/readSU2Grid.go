package readfiles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
)

var ErrSU2Format = errors.New("malformed SU2 file")

// SU2Mesh holds a surface mesh of quadrilaterals. Node and element tags are
// the zero based SU2 indices plus one.
type SU2Mesh struct {
	Dimension int
	Nodes     map[int][3]float64
	Elements  map[int][4]int
	Markers   map[string][]int // Marker name to the sorted tags of the nodes on its lines
}

func ReadSU2(filename string, verbose bool) (mesh *SU2Mesh, err error) {
	var (
		file *os.File
	)
	if verbose {
		fmt.Printf("Reading SU2 file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	return ParseSU2(file)
}

func ParseSU2(r io.Reader) (mesh *SU2Mesh, err error) {
	var (
		reader = bufio.NewReader(r)
	)
	mesh = &SU2Mesh{}
	if mesh.Dimension, err = readNumber(reader, "NDIME"); err != nil {
		return
	}
	if mesh.Dimension != 2 && mesh.Dimension != 3 {
		return nil, fmt.Errorf("%w: NDIME = %d", ErrSU2Format, mesh.Dimension)
	}
	if mesh.Elements, err = readElements(reader); err != nil {
		return
	}
	if mesh.Nodes, err = readVertices(reader, mesh.Dimension); err != nil {
		return
	}
	if mesh.Markers, err = readMarkers(reader); err != nil {
		return
	}
	for k, el := range mesh.Elements {
		for _, n := range el {
			if _, present := mesh.Nodes[n]; !present {
				return nil, fmt.Errorf("%w: element %d references missing point %d", ErrSU2Format, k, n-1)
			}
		}
	}
	return
}

func readElements(reader *bufio.Reader) (elements map[int][4]int, err error) {
	var (
		K int
		n int
	)
	if K, err = readNumber(reader, "NELEM"); err != nil {
		return
	}
	elements = make(map[int][4]int, K)
	for k := 0; k < K; k++ {
		var (
			line  string
			nType int
			v     [4]int
		)
		if line, err = getLine(reader); err != nil {
			return
		}
		if n, err = fmt.Sscanf(line, "%d %d %d %d %d", &nType, &v[0], &v[1], &v[2], &v[3]); err != nil || n != 5 {
			return nil, fmt.Errorf("%w: element line [%s]", ErrSU2Format, line)
		}
		if SU2ElementType(nType) != ELType_Quadrilateral {
			return nil, fmt.Errorf("%w: element %d has type %d, only quadrilaterals are supported", ErrSU2Format, k, nType)
		}
		for i := range v {
			v[i]++
		}
		elements[k+1] = v
	}
	return
}

func readVertices(reader *bufio.Reader, dim int) (nodes map[int][3]float64, err error) {
	var (
		Nv int
		n  int
	)
	if Nv, err = readNumber(reader, "NPOIN"); err != nil {
		return
	}
	nodes = make(map[int][3]float64, Nv)
	for i := 0; i < Nv; i++ {
		var (
			line string
			x    [3]float64
		)
		if line, err = getLine(reader); err != nil {
			return
		}
		if dim == 2 {
			n, err = fmt.Sscanf(line, "%f %f", &x[0], &x[1])
		} else {
			n, err = fmt.Sscanf(line, "%f %f %f", &x[0], &x[1], &x[2])
		}
		if err != nil || n != dim {
			return nil, fmt.Errorf("%w: unable to read coordinates [%s]", ErrSU2Format, line)
		}
		nodes[i+1] = x
	}
	return
}

// readMarkers collects the nodes of each marker; markers are optional
func readMarkers(reader *bufio.Reader) (markers map[string][]int, err error) {
	var (
		NBCs int
	)
	markers = make(map[string][]int)
	if NBCs, err = readNumber(reader, "NMARK"); err != nil {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return
	}
	for m := 0; m < NBCs; m++ {
		var (
			label  string
			nEdges int
			set    = make(map[int]bool)
		)
		if label, err = readLabel(reader, "MARKER_TAG"); err != nil {
			return
		}
		if _, ok := markers[label]; ok {
			return nil, fmt.Errorf("%w: duplicate marker with label [%s]", ErrSU2Format, label)
		}
		if nEdges, err = readNumber(reader, "MARKER_ELEMS"); err != nil {
			return
		}
		for i := 0; i < nEdges; i++ {
			var (
				line          string
				nType, v1, v2 int
			)
			if line, err = getLine(reader); err != nil {
				return
			}
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				return nil, fmt.Errorf("%w: marker line [%s]", ErrSU2Format, line)
			}
			if SU2ElementType(nType) != ELType_LINE {
				return nil, fmt.Errorf("%w: marker %s should only contain line elements", ErrSU2Format, label)
			}
			set[v1+1], set[v2+1] = true, true
		}
		for tag := range set {
			markers[label] = append(markers[label], tag)
		}
		sort.Ints(markers[label])
	}
	return
}

func getToken(reader *bufio.Reader, key string) (token string, err error) {
	var (
		line string
	)
	if line, err = getLineNoComments(reader); err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		return "", fmt.Errorf("%w: badly formed input line [%s], should have an =", ErrSU2Format, line)
	}
	if name := strings.TrimSpace(line[:ind]); name != key {
		return "", fmt.Errorf("%w: expected %s, found [%s]", ErrSU2Format, key, name)
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader, key string) (label string, err error) {
	var (
		token string
	)
	if token, err = getToken(reader, key); err != nil {
		return
	}
	if label = strings.TrimSpace(token); len(label) == 0 {
		err = fmt.Errorf("%w: unable to read label from token: [%s]", ErrSU2Format, token)
	}
	return
}

func readNumber(reader *bufio.Reader, key string) (num int, err error) {
	var (
		token string
	)
	if token, err = getToken(reader, key); err != nil {
		return
	}
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("%w: unable to read number from token: [%s]", ErrSU2Format, token)
	}
	return
}

func getLineNoComments(reader *bufio.Reader) (line string, err error) {
	for {
		if line, err = getLine(reader); err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

func getLine(reader *bufio.Reader) (line string, err error) {
	line, err = reader.ReadString('\n')
	if err == io.EOF && len(line) != 0 {
		err = nil
	}
	line = strings.TrimRight(line, "\r\n")
	return
}
