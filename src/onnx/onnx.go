// Package onnx builds the small variant scoring model used as an ONNX fixture and writes it in the ONNX protobuf wire format.
package onnx

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
	"gonum.org/v1/gonum/mat"
)

// ONNX versions written to the model
const (
	IRVersion    = 8
	OpsetVersion = 17
)

// TensorFloat is the ONNX element type for float32
const TensorFloat = 1

// UnknownDim marks a dimension without a fixed size (the batch dimension)
const UnknownDim = -1

// NumFeatures is the width of the model input: ref length, alt length, node degree, centrality, complexity
const NumFeatures = 5

// Node is a single graph operation
type Node struct {
	OpType  string
	Inputs  []string
	Outputs []string
}

// Tensor is a float32 initializer, stored as little-endian raw data on the wire
type Tensor struct {
	Name string
	Dims []int64
	Data []float32
}

// ValueInfo describes a float graph input or output
type ValueInfo struct {
	Name  string
	Shape []int64
}

// Graph is the computation graph of a model
type Graph struct {
	Name         string
	Nodes        []Node
	Initializers []Tensor
	Inputs       []ValueInfo
	Outputs      []ValueInfo
}

// Model is the top-level ONNX model
type Model struct {
	ProducerName string
	Graph        Graph
}

// VariantScoringModel returns the fixed linear + sigmoid model: output = sigmoid(input x weights + bias)
func VariantScoringModel() *Model {
	return &Model{
		ProducerName: "variant-scorer-sample",
		Graph: Graph{
			Name: "variant-scoring-model",
			Nodes: []Node{
				{OpType: "MatMul", Inputs: []string{"input", "weights"}, Outputs: []string{"matmul_output"}},
				{OpType: "Add", Inputs: []string{"matmul_output", "bias"}, Outputs: []string{"add_output"}},
				{OpType: "Sigmoid", Inputs: []string{"add_output"}, Outputs: []string{"output"}},
			},
			Initializers: []Tensor{
				{Name: "weights", Dims: []int64{NumFeatures, 1}, Data: []float32{0.2, -0.1, 0.15, 0.3, 0.25}},
				{Name: "bias", Dims: []int64{1}, Data: []float32{0.1}},
			},
			Inputs:  []ValueInfo{{Name: "input", Shape: []int64{UnknownDim, NumFeatures}}},
			Outputs: []ValueInfo{{Name: "output", Shape: []int64{UnknownDim, 1}}},
		},
	}
}

// Marshal is a method to encode the model as an ONNX ModelProto
func (Model *Model) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, IRVersion)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, Model.ProducerName)
	b = protowire.AppendTag(b, 7, protowire.BytesType)
	b = protowire.AppendBytes(b, Model.Graph.marshal())

	// default domain opset
	var opset []byte
	opset = protowire.AppendTag(opset, 1, protowire.BytesType)
	opset = protowire.AppendString(opset, "")
	opset = protowire.AppendTag(opset, 2, protowire.VarintType)
	opset = protowire.AppendVarint(opset, OpsetVersion)
	b = protowire.AppendTag(b, 8, protowire.BytesType)
	return protowire.AppendBytes(b, opset)
}

func (Graph *Graph) marshal() []byte {
	var b []byte
	for _, node := range Graph.Nodes {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, node.marshal())
	}
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, Graph.Name)
	for _, tensor := range Graph.Initializers {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, tensor.marshal())
	}
	for _, vi := range Graph.Inputs {
		b = protowire.AppendTag(b, 11, protowire.BytesType)
		b = protowire.AppendBytes(b, vi.marshal())
	}
	for _, vi := range Graph.Outputs {
		b = protowire.AppendTag(b, 12, protowire.BytesType)
		b = protowire.AppendBytes(b, vi.marshal())
	}
	return b
}

func (Node *Node) marshal() []byte {
	var b []byte
	for _, input := range Node.Inputs {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, input)
	}
	for _, output := range Node.Outputs {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, output)
	}
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	return protowire.AppendString(b, Node.OpType)
}

func (Tensor *Tensor) marshal() []byte {
	var b []byte
	for _, dim := range Tensor.Dims {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(dim))
	}
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, TensorFloat)
	b = protowire.AppendTag(b, 8, protowire.BytesType)
	b = protowire.AppendString(b, Tensor.Name)
	raw := make([]byte, 4*len(Tensor.Data))
	for i, v := range Tensor.Data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	return protowire.AppendBytes(b, raw)
}

// marshal encodes a ValueInfoProto holding a float tensor type
func (ValueInfo *ValueInfo) marshal() []byte {
	var shape []byte
	for _, dim := range ValueInfo.Shape {
		var d []byte
		if dim != UnknownDim {
			d = protowire.AppendTag(d, 1, protowire.VarintType)
			d = protowire.AppendVarint(d, uint64(dim))
		}
		shape = protowire.AppendTag(shape, 1, protowire.BytesType)
		shape = protowire.AppendBytes(shape, d)
	}
	var tensorType []byte
	tensorType = protowire.AppendTag(tensorType, 1, protowire.VarintType)
	tensorType = protowire.AppendVarint(tensorType, TensorFloat)
	tensorType = protowire.AppendTag(tensorType, 2, protowire.BytesType)
	tensorType = protowire.AppendBytes(tensorType, shape)
	var typeProto []byte
	typeProto = protowire.AppendTag(typeProto, 1, protowire.BytesType)
	typeProto = protowire.AppendBytes(typeProto, tensorType)

	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, ValueInfo.Name)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	return protowire.AppendBytes(b, typeProto)
}

// Save is a method to write the encoded model to disk
func (Model *Model) Save(path string) error {
	return os.WriteFile(path, Model.Marshal(), 0644)
}

// Evaluate is a method to run the graph on a batch of feature rows, returning one score per row.
// Only the MatMul, Add and Sigmoid operators are supported.
func (Model *Model) Evaluate(batch [][]float64) ([]float64, error) {
	if len(Model.Graph.Inputs) != 1 || len(Model.Graph.Outputs) != 1 {
		return nil, fmt.Errorf("graph must have a single input and output")
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("no feature rows to score")
	}
	width := len(batch[0])
	input := mat.NewDense(len(batch), width, nil)
	for i, row := range batch {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
		input.SetRow(i, row)
	}
	values := map[string]*mat.Dense{Model.Graph.Inputs[0].Name: input}
	for _, tensor := range Model.Graph.Initializers {
		values[tensor.Name] = tensor.dense()
	}
	for _, node := range Model.Graph.Nodes {
		args := make([]*mat.Dense, len(node.Inputs))
		for i, name := range node.Inputs {
			v, ok := values[name]
			if !ok {
				return nil, fmt.Errorf("%v node references unknown value %q", node.OpType, name)
			}
			args[i] = v
		}
		result, err := apply(node.OpType, args)
		if err != nil {
			return nil, err
		}
		values[node.Outputs[0]] = result
	}
	output, ok := values[Model.Graph.Outputs[0].Name]
	if !ok {
		return nil, fmt.Errorf("graph did not produce %q", Model.Graph.Outputs[0].Name)
	}
	return mat.Col(nil, 0, output), nil
}

// dense views the tensor as a matrix, a one dimensional tensor becomes a row vector
func (Tensor *Tensor) dense() *mat.Dense {
	data := make([]float64, len(Tensor.Data))
	for i, v := range Tensor.Data {
		data[i] = float64(v)
	}
	if len(Tensor.Dims) == 2 {
		return mat.NewDense(int(Tensor.Dims[0]), int(Tensor.Dims[1]), data)
	}
	return mat.NewDense(1, len(data), data)
}

// apply runs a single operator
func apply(opType string, args []*mat.Dense) (*mat.Dense, error) {
	result := new(mat.Dense)
	switch opType {
	case "MatMul":
		if len(args) != 2 {
			return nil, fmt.Errorf("MatMul needs 2 inputs, got %d", len(args))
		}
		_, ac := args[0].Dims()
		br, _ := args[1].Dims()
		if ac != br {
			return nil, fmt.Errorf("MatMul shape mismatch: %d features against %d weights", ac, br)
		}
		result.Mul(args[0], args[1])
	case "Add":
		if len(args) != 2 {
			return nil, fmt.Errorf("Add needs 2 inputs, got %d", len(args))
		}
		r, c := args[1].Dims()
		if r != 1 || c != 1 {
			return nil, fmt.Errorf("Add only broadcasts a scalar bias")
		}
		bias := args[1].At(0, 0)
		result.Apply(func(_, _ int, v float64) float64 { return v + bias }, args[0])
	case "Sigmoid":
		if len(args) != 1 {
			return nil, fmt.Errorf("Sigmoid needs 1 input, got %d", len(args))
		}
		result.Apply(func(_, _ int, v float64) float64 { return 1 / (1 + math.Exp(-v)) }, args[0])
	default:
		return nil, fmt.Errorf("unsupported operator: %v", opType)
	}
	return result, nil
}
