// Scry CLI - runs a chunk image under the debugger
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/scry/debugger"
	"github.com/chazu/scry/engine"
	"github.com/chazu/scry/engine/dist"
	"github.com/chazu/scry/manifest"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	dir := flag.String("C", ".", "Directory containing scry.toml")
	demo := flag.Bool("demo", false, "Run the built-in demo program instead of an image")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides the manifest)")
	trace := flag.Bool("trace", false, "Print every bytecode step of the entry frame")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: scry [options]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a compiled chunk image under the scry debugger, stopping at the\n")
		fmt.Fprintf(os.Stderr, "breakpoints configured in scry.toml.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  scry                # Debug the image configured in ./scry.toml\n")
		fmt.Fprintf(os.Stderr, "  scry -C ./app       # Debug using app/scry.toml\n")
		fmt.Fprintf(os.Stderr, "  scry -demo -trace   # Step through the built-in demo\n")
	}
	flag.Parse()

	var m *manifest.Manifest
	var chunk *engine.Chunk

	if *demo {
		chunk = demoChunk()
	} else {
		var err error
		m, err = manifest.FindAndLoad(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
			os.Exit(1)
		}
		if m == nil {
			fmt.Fprintf(os.Stderr, "No scry.toml found in or above %s (try -demo)\n", *dir)
			os.Exit(1)
		}
		chunk, err = loadImage(m.ImagePath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
			os.Exit(1)
		}
	}

	v := 0
	if m != nil {
		v = m.Logging.Verbosity
	}
	if *verbosity >= 0 {
		v = *verbosity
	}
	commonlog.Configure(v, nil)

	interp := engine.NewInterp()
	d := debugger.New(interp)
	global := engine.NewGlobal()
	d.AddDebuggee(global)

	script := d.WrapScript(chunk)
	if m != nil {
		applyPresets(script, m.Breakpoints)
	}
	if *trace {
		// Stop at the first offset, then single-step from there.
		offsets := script.GetAllOffsets()
		if len(offsets) > 0 {
			script.SetBreakpoint(offsets[0], debugger.BreakpointHandlerFunc(func(f *debugger.Frame) debugger.ResumptionValue {
				f.SetOnStep(debugger.StepHandlerFunc(func(f *debugger.Frame) debugger.ResumptionValue {
					printStop("step", f)
					return nil
				}))
				printStop("trace start", f)
				return nil
			}))
		}
	}

	c := interp.RunGlobal(chunk, global)
	switch c.Kind {
	case engine.CompleteReturn:
		fmt.Printf("Program finished: %s\n", c.Value.String())
	case engine.CompleteThrow:
		fmt.Printf("Program threw: %s\n", c.Value.String())
		os.Exit(1)
	case engine.CompleteTerminate:
		fmt.Println("Program terminated")
		os.Exit(1)
	}
}

// loadImage reads and restores a CBOR chunk image.
func loadImage(path string) (*engine.Chunk, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest does not configure an image path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := dist.UnmarshalImage(data)
	if err != nil {
		return nil, err
	}
	return img.Restore()
}

// applyPresets registers the manifest's breakpoints, resolving line
// presets to every entry offset of the line.
func applyPresets(script *debugger.Script, presets []manifest.Breakpoint) {
	handler := debugger.BreakpointHandlerFunc(func(f *debugger.Frame) debugger.ResumptionValue {
		printStop("breakpoint", f)
		return nil
	})
	for _, bp := range presets {
		if bp.Offset != nil {
			if err := script.SetBreakpoint(*bp.Offset, handler); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: breakpoint at offset %d: %v\n", *bp.Offset, err)
			}
			continue
		}
		offsets := script.GetLineOffsets(bp.Line)
		if len(offsets) == 0 {
			fmt.Fprintf(os.Stderr, "Warning: no code at line %d\n", bp.Line)
			continue
		}
		for _, offset := range offsets {
			if err := script.SetBreakpoint(offset, handler); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: breakpoint at line %d offset %d: %v\n", bp.Line, offset, err)
			}
		}
	}
}

// printStop prints the stack and the innermost frame's variables.
func printStop(reason string, f *debugger.Frame) {
	offset, _ := f.Offset()
	fmt.Printf("-- %s at offset %d --\n", reason, offset)

	depth := 0
	for fr := f; fr != nil; fr = fr.Older() {
		o, ok := fr.Offset()
		if !ok {
			fmt.Printf("  #%d [%s] <opaque>\n", depth, fr.Kind())
		} else {
			fmt.Printf("  #%d [%s] offset %d\n", depth, fr.Kind(), o)
		}
		depth++
	}

	env := f.Environment()
	if env == nil {
		return
	}
	names, err := env.Names()
	if err != nil {
		fmt.Printf("  (scope not inspectable: %v)\n", err)
		return
	}
	for _, name := range names {
		v, err := env.GetVariable(name)
		if err != nil {
			continue
		}
		fmt.Printf("  %s = %s\n", name, formatValue(v))
	}
}

func formatValue(v debugger.Value) string {
	switch v.Kind() {
	case debugger.KindUndefined:
		return "undefined"
	case debugger.KindNull:
		return "null"
	case debugger.KindBoolean:
		b, _ := v.AsBoolean()
		return fmt.Sprintf("%t", b)
	case debugger.KindString:
		s, _ := v.AsString()
		return fmt.Sprintf("%q", s)
	case debugger.KindNumber:
		n, _ := v.AsNumber()
		return fmt.Sprintf("%g", n)
	default:
		obj := v.AsObject()
		if obj != nil && obj.IsCallable() {
			if name, ok := obj.Name(); ok && name != "" {
				return "function " + name
			}
			return "function"
		}
		return "[object]"
	}
}

// demoChunk assembles a tiny three-line program:
//
//	total = 10
//	total = total + 32
//	total
func demoChunk() *engine.Chunk {
	c := engine.NewChunk()
	c.StartLine = 1
	c.Source = engine.NewSource("total = 10\ntotal = total + 32\ntotal\n", "demo.scry", engine.IntroducedByLoad)
	c.LocalNames = []string{"total"}

	c.AddSourceLocation(uint32(c.CurrentOffset()), 1, 1)
	c.EmitU16(engine.OpNumber, c.AddNumber(10))
	c.EmitU16(engine.OpSetVar, c.AddConstant("total"))
	c.Emit(engine.OpPop)

	c.AddSourceLocation(uint32(c.CurrentOffset()), 2, 1)
	c.EmitU16(engine.OpGetVar, c.AddConstant("total"))
	c.EmitU16(engine.OpNumber, c.AddNumber(32))
	c.Emit(engine.OpAdd)
	c.EmitU16(engine.OpSetVar, c.AddConstant("total"))
	c.Emit(engine.OpPop)

	c.AddSourceLocation(uint32(c.CurrentOffset()), 3, 1)
	c.EmitU16(engine.OpGetVar, c.AddConstant("total"))
	c.Emit(engine.OpReturn)
	return c
}
