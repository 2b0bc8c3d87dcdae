package onnx

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

// field is a decoded wire field
type field struct {
	num    protowire.Number
	varint uint64
	bytes  []byte
}

// decode splits a message into its top-level fields
func decode(t *testing.T, b []byte) []field {
	fields := []field{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			t.Fatal(protowire.ParseError(n))
		}
		b = b[n:]
		f := field{num: num}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			t.Fatalf("unexpected wire type %v for field %d", typ, num)
		}
		if n < 0 {
			t.Fatal(protowire.ParseError(n))
		}
		b = b[n:]
		fields = append(fields, f)
	}
	return fields
}

// get returns every field with the given number
func get(fields []field, num protowire.Number) []field {
	matches := []field{}
	for _, f := range fields {
		if f.num == num {
			matches = append(matches, f)
		}
	}
	return matches
}

func TestMarshal(t *testing.T) {
	model := decode(t, VariantScoringModel().Marshal())
	if v := get(model, 1); len(v) != 1 || v[0].varint != IRVersion {
		t.Fatal("missing IR version")
	}
	if v := get(model, 2); len(v) != 1 || string(v[0].bytes) != "variant-scorer-sample" {
		t.Fatal("missing producer name")
	}
	opset := decode(t, get(model, 8)[0].bytes)
	if get(opset, 2)[0].varint != OpsetVersion {
		t.Fatal("wrong opset version")
	}

	graph := decode(t, get(model, 7)[0].bytes)
	if string(get(graph, 2)[0].bytes) != "variant-scoring-model" {
		t.Fatal("wrong graph name")
	}
	nodes := get(graph, 1)
	expectedOps := []string{"MatMul", "Add", "Sigmoid"}
	if len(nodes) != len(expectedOps) {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	for i, n := range nodes {
		node := decode(t, n.bytes)
		if op := string(get(node, 4)[0].bytes); op != expectedOps[i] {
			t.Fatalf("node %d is %v, expected %v", i, op, expectedOps[i])
		}
	}
	last := decode(t, nodes[2].bytes)
	if string(get(last, 2)[0].bytes) != "output" {
		t.Fatal("sigmoid node does not write the graph output")
	}

	// the weights initializer carries the little-endian float32 values
	initializers := get(graph, 5)
	if len(initializers) != 2 {
		t.Fatalf("expected 2 initializers, got %d", len(initializers))
	}
	weights := decode(t, initializers[0].bytes)
	if string(get(weights, 8)[0].bytes) != "weights" || get(weights, 2)[0].varint != TensorFloat {
		t.Fatal("bad weights tensor")
	}
	dims := get(weights, 1)
	if len(dims) != 2 || dims[0].varint != 5 || dims[1].varint != 1 {
		t.Fatal("weights should be 5x1")
	}
	raw := get(weights, 9)[0].bytes
	expected := []float32{0.2, -0.1, 0.15, 0.3, 0.25}
	for i, v := range expected {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:])); got != v {
			t.Fatalf("weight %d is %v, expected %v", i, got, v)
		}
	}

	// the batch dimension of the input is left unset
	input := decode(t, get(graph, 11)[0].bytes)
	typeProto := decode(t, get(input, 2)[0].bytes)
	tensorType := decode(t, get(typeProto, 1)[0].bytes)
	shape := decode(t, get(tensorType, 2)[0].bytes)
	shapeDims := get(shape, 1)
	if len(shapeDims) != 2 {
		t.Fatalf("input should have 2 dims, got %d", len(shapeDims))
	}
	if len(shapeDims[0].bytes) != 0 {
		t.Fatal("batch dimension should be empty")
	}
	if get(decode(t, shapeDims[1].bytes), 1)[0].varint != NumFeatures {
		t.Fatal("feature dimension should be 5")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variant_model.onnx")
	model := VariantScoringModel()
	if err := model.Save(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(model.Marshal()) {
		t.Fatal("saved model differs from the encoded model")
	}
}

func TestEvaluate(t *testing.T) {
	model := VariantScoringModel()
	scores, err := model.Evaluate([][]float64{{0, 0, 0, 0, 0}, {1, 2, 3, 4, 5}})
	if err != nil {
		t.Fatal(err)
	}
	sigmoid := func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
	weights := []float64{0.2, -0.1, 0.15, 0.3, 0.25}
	z := 0.1
	for i, w := range weights {
		z += w * float64(i+1)
	}
	expected := []float64{sigmoid(0.1), sigmoid(z)}
	for i := range expected {
		if math.Abs(scores[i]-expected[i]) > 1e-6 {
			t.Fatalf("score %d is %v, expected %v", i, scores[i], expected[i])
		}
	}
	if _, err := model.Evaluate([][]float64{{1, 2, 3}}); err == nil {
		t.Fatal("accepted the wrong number of features")
	}
	if _, err := model.Evaluate(nil); err == nil {
		t.Fatal("accepted an empty batch")
	}
}
