package asset

import (
	"bytes"
	"encoding/binary"
	"math"
)

// binarySTL encodes triangles (9 floats each) as a binary STL with zero facet normals.
func binarySTL(tris ...[9]float32) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(tris)))
	for _, t := range tris {
		for i := 0; i < 3; i++ {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(0))
		}
		for _, f := range t {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

// boxSTL returns two triangles spanning min and max.
func boxSTL(min, max [3]float32) []byte {
	return binarySTL(
		[9]float32{min[0], min[1], min[2], max[0], min[1], min[2], max[0], max[1], max[2]},
		[9]float32{min[0], min[1], min[2], max[0], max[1], max[2], min[0], max[1], max[2]},
	)
}

const asciiSTL = `solid cube
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
    endloop
  endfacet
endsolid cube
`
