package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/meigma/blend"
)

func headerCommand() *cli.Command {
	return &cli.Command{
		Name:      "header",
		Usage:     "Print pointer size, byte order, version, and digest",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			f, err := openFile(c)
			if err != nil {
				return err
			}
			h := f.Header()
			w := c.App.Writer
			fmt.Fprintf(w, "pointer size: %d\n", h.PointerSize)
			fmt.Fprintf(w, "byte order:   %s\n", h.Endian)
			fmt.Fprintf(w, "version:      %s\n", h.Version)
			fmt.Fprintf(w, "digest:       %s\n", f.Digest())
			fmt.Fprintf(w, "blocks:       %d\n", len(f.Blocks()))
			fmt.Fprintf(w, "structs:      %d\n", len(f.Catalog().Structs()))
			return nil
		},
	}
}

func blocksCommand() *cli.Command {
	return &cli.Command{
		Name:      "blocks",
		Usage:     "List every block with its decode state",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			f, err := openFile(c)
			if err != nil {
				return err
			}
			hexWidth := f.Header().PointerSize * 2

			decoded := make(map[int]*blend.DecodedBlock, len(f.Decoded()))
			for i := range f.Decoded() {
				d := &f.Decoded()[i]
				decoded[d.Block.Index] = d
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tCODE\tADDRESS\tSDNA\tSTRUCT\tCOUNT\tLENGTH\tSTATE")
			for i := range f.Blocks() {
				blk := &f.Blocks()[i]
				state, structName := "-", "-"
				if d, ok := decoded[blk.Index]; ok {
					state = "decoded"
					if d.Opaque() {
						state = "opaque"
					}
					if d.Struct != nil {
						structName = d.Struct.Name()
					}
				}
				fmt.Fprintf(tw, "%d\t%s\t%0*x\t%d\t%s\t%d\t%d\t%s\n",
					blk.Index, blk.TrimmedCode(), hexWidth, blk.Address, blk.SDNAIndex,
					structName, blk.Count, blk.Length, state)
			}
			return tw.Flush()
		},
	}
}

func structsCommand() *cli.Command {
	return &cli.Command{
		Name:      "structs",
		Usage:     "List catalog structures and their fields",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Only show the structure with this type name"},
		},
		Action: func(c *cli.Context) error {
			f, err := openFile(c)
			if err != nil {
				return err
			}
			structs := f.Catalog().Structs()
			if name := c.String("name"); name != "" {
				st, ok := f.Catalog().StructByName(name)
				if !ok {
					return fmt.Errorf("no structure named %q", name)
				}
				structs = []*blend.Struct{st}
			}
			w := c.App.Writer
			for _, st := range structs {
				fmt.Fprintf(w, "%s (%d bytes, index %d)\n", st.Name(), st.Size(), st.Index)
				for _, fd := range st.Fields {
					line := fmt.Sprintf("  %-12s %-24s %d", fd.Type.Name, fd.Name, fd.Size)
					if fd.Err() != nil {
						line += "  error: " + fd.Err().Error()
					}
					fmt.Fprintln(w, line)
				}
			}
			return nil
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the decoded instances of the block at an address",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Required: true, Usage: "Block address, e.g. 0x7f3a10"},
			&cli.BoolFlag{Name: "deref", Usage: "Follow pointer fields one level"},
		},
		Action: func(c *cli.Context) error {
			addr, err := strconv.ParseUint(c.String("addr"), 0, 64)
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", c.String("addr"), err)
			}
			f, err := openFile(c)
			if err != nil {
				return err
			}
			target, ok := f.Lookup(addr)
			if !ok {
				return fmt.Errorf("no block at %#x", addr)
			}

			w := c.App.Writer
			fmt.Fprintf(w, "block %d %s at %#x\n", target.Block.Index, target.Block.TrimmedCode(), addr)
			if target.Raw() {
				fmt.Fprintf(w, "opaque, %d bytes\n", len(target.Bytes()))
				_, err := io.WriteString(w, hex.Dump(target.Bytes()[:min(len(target.Bytes()), 256)]))
				return err
			}
			p := &printer{w: w, file: f, deref: c.Bool("deref")}
			for _, in := range target.Instances {
				p.instance(in, 0)
			}
			return nil
		},
	}
}

func tocCommand() *cli.Command {
	return &cli.Command{
		Name:      "toc",
		Usage:     "Write the FlatBuffers block table of contents",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Required: true, Usage: "Output path", TakesFile: true},
		},
		Action: func(c *cli.Context) error {
			f, err := openFile(c)
			if err != nil {
				return err
			}
			data := f.MarshalTOC()
			if err := os.WriteFile(c.String("out"), data, 0o644); err != nil { //nolint:gosec // output is not secret
				return fmt.Errorf("write toc: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "wrote %d entries (%d bytes) to %s\n", len(f.Blocks()), len(data), c.String("out"))
			return nil
		},
	}
}

// printer writes an indented instance tree.
type printer struct {
	w     io.Writer
	file  *blend.File
	deref bool
}

func (p *printer) instance(in *blend.Instance, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(p.w, "%s%s %s\n", indent, in.TypeName, in.Name)
	for _, f := range in.Fields {
		p.field(f, depth+1)
	}
}

func (p *printer) field(f *blend.Field, depth int) {
	indent := strings.Repeat("  ", depth)
	switch f.Kind {
	case blend.KindStruct:
		p.instance(f.Struct, depth)
		return
	case blend.KindStructArray:
		for _, s := range f.Structs {
			p.instance(s, depth)
		}
		return
	}

	fmt.Fprintf(p.w, "%s%s %s = %s", indent, f.TypeName, f.Name, formatValue(f))
	if p.deref && f.Kind == blend.KindPointer {
		fmt.Fprint(p.w, p.describeTarget(f))
	}
	fmt.Fprintln(p.w)
}

func (p *printer) describeTarget(f *blend.Field) string {
	target, err := p.file.Deref(f)
	switch {
	case err != nil:
		return " -> dangling"
	case target == nil:
		return ""
	case target.Raw():
		if in, err := p.file.DerefStructs(f); err == nil {
			return fmt.Sprintf(" -> %s x%d (reinterpreted)", in[0].TypeName, len(in))
		}
		return fmt.Sprintf(" -> opaque %d bytes", len(target.Bytes()))
	default:
		name := ""
		if n, ok := target.Instances[0].Lookup("id.name"); ok && n.Kind == blend.KindArray {
			name = " " + strconv.Quote(n.Array.String())
		}
		return fmt.Sprintf(" -> %s x%d%s", target.Struct.Name(), len(target.Instances), name)
	}
}

// formatValue renders a leaf field on one line.
func formatValue(f *blend.Field) string {
	switch f.Kind {
	case blend.KindScalar:
		return f.Scalar.String()
	case blend.KindArray, blend.KindArray2D:
		if isChar(f.TypeName) && f.Kind == blend.KindArray {
			return strconv.Quote(f.Array.String())
		}
		rows := make([]string, 0, max(f.Array.Rows(), 1))
		n := 1
		if f.Kind == blend.KindArray2D {
			n = f.Array.Rows()
		}
		for i := range n {
			row := f.Array.Row(i)
			vals := make([]string, len(row))
			for j, s := range row {
				vals[j] = s.String()
			}
			rows = append(rows, "["+strings.Join(vals, " ")+"]")
		}
		if len(rows) == 1 {
			return rows[0]
		}
		return "[" + strings.Join(rows, " ") + "]"
	case blend.KindPointer, blend.KindPointerToPointer:
		return fmt.Sprintf("%#x", f.Pointer)
	case blend.KindPointerArray:
		vals := make([]string, len(f.Pointers))
		for i, a := range f.Pointers {
			vals[i] = fmt.Sprintf("%#x", a)
		}
		return "[" + strings.Join(vals, " ") + "]"
	default:
		return "?"
	}
}

func isChar(typeName string) bool {
	return typeName == "char" || typeName == "uchar"
}
