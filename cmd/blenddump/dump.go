package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"github.com/urfave/cli/v2"

	"github.com/meigma/blend"
)

type dumpFile struct {
	PointerSize int         `json:"pointer_size"`
	Endian      string      `json:"endian"`
	Version     string      `json:"version"`
	Digest      string      `json:"digest,omitempty"`
	Blocks      []dumpBlock `json:"blocks"`
}

type dumpBlock struct {
	Index     int            `json:"index"`
	Code      string         `json:"code"`
	Address   string         `json:"address"`
	SDNA      int32          `json:"sdna"`
	Struct    string         `json:"struct,omitempty"`
	Count     int32          `json:"count"`
	Length    int32          `json:"length"`
	Opaque    bool           `json:"opaque"`
	Instances []dumpInstance `json:"instances,omitempty"`
}

type dumpInstance struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Fields []dumpField `json:"fields"`
}

type dumpField struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Kind     string         `json:"kind"`
	Value    any            `json:"value,omitempty"`
	Struct   *dumpInstance  `json:"struct,omitempty"`
	Elements []dumpInstance `json:"elements,omitempty"`
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Write every decoded block as JSON",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "Output path (default stdout)", TakesFile: true},
			&cli.BoolFlag{Name: "zstd", Usage: "Compress the output with zstd"},
		},
		Action: func(c *cli.Context) (err error) {
			f, err := openFile(c)
			if err != nil {
				return err
			}

			var w io.Writer = c.App.Writer
			if path := c.String("out"); path != "" {
				out, createErr := os.Create(path)
				if createErr != nil {
					return fmt.Errorf("create output: %w", createErr)
				}
				defer func() {
					if cerr := out.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = out
			}
			return writeDump(w, f, c.Bool("zstd"))
		},
	}
}

// writeDump encodes f as JSON to w, optionally through a zstd encoder.
func writeDump(w io.Writer, f *blend.File, compress bool) error {
	if !compress {
		return encodeDump(w, f)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	if err := encodeDump(enc, f); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func encodeDump(w io.Writer, f *blend.File) error {
	h := f.Header()
	doc := dumpFile{
		PointerSize: h.PointerSize,
		Endian:      h.Endian.String(),
		Version:     h.Version,
		Digest:      f.Digest().String(),
		Blocks:      make([]dumpBlock, 0, len(f.Decoded())),
	}
	for i := range f.Decoded() {
		d := &f.Decoded()[i]
		b := dumpBlock{
			Index:   d.Block.Index,
			Code:    d.Block.TrimmedCode(),
			Address: fmt.Sprintf("0x%0*x", h.PointerSize*2, d.Block.Address),
			SDNA:    d.Block.SDNAIndex,
			Count:   d.Block.Count,
			Length:  d.Block.Length,
			Opaque:  d.Opaque(),
		}
		if d.Struct != nil {
			b.Struct = d.Struct.Name()
		}
		for _, in := range d.Instances {
			b.Instances = append(b.Instances, toDumpInstance(in))
		}
		doc.Blocks = append(doc.Blocks, b)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	return nil
}

func toDumpInstance(in *blend.Instance) dumpInstance {
	out := dumpInstance{Name: in.Name, Type: in.TypeName, Fields: make([]dumpField, 0, len(in.Fields))}
	for _, f := range in.Fields {
		df := dumpField{Name: f.Name, Type: f.TypeName, Kind: f.Kind.String()}
		switch f.Kind {
		case blend.KindStruct:
			s := toDumpInstance(f.Struct)
			df.Struct = &s
		case blend.KindStructArray:
			for _, s := range f.Structs {
				df.Elements = append(df.Elements, toDumpInstance(s))
			}
		default:
			df.Value = dumpValue(f)
		}
		out.Fields = append(out.Fields, df)
	}
	return out
}

func dumpValue(f *blend.Field) any {
	switch f.Kind {
	case blend.KindScalar:
		return scalarValue(f.Scalar)
	case blend.KindArray, blend.KindArray2D:
		if isChar(f.TypeName) && f.Kind == blend.KindArray {
			return f.Array.String()
		}
		vals := make([]any, len(f.Array.Elems))
		for i, s := range f.Array.Elems {
			vals[i] = scalarValue(s)
		}
		return vals
	case blend.KindPointer, blend.KindPointerToPointer:
		return fmt.Sprintf("%#x", f.Pointer)
	case blend.KindPointerArray:
		vals := make([]string, len(f.Pointers))
		for i, a := range f.Pointers {
			vals[i] = fmt.Sprintf("%#x", a)
		}
		return vals
	default:
		return nil
	}
}

// scalarValue returns s in a JSON-encodable form. NaN and infinities are
// written as the strings "NaN", "+Inf" and "-Inf".
func scalarValue(s blend.Scalar) any {
	switch v := s.Value().(type) {
	case float32:
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 32)
		}
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		return v
	default:
		return v
	}
}
