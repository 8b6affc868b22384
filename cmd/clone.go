package cmd

import (
	"strconv"
	"strings"

	"github.com/rjNemo/underscore"
	"github.com/spf13/cobra"

	"github.com/glossopoeia/vmheap/runtime"
)

var (
	cloneShared bool
	cloneCycle  bool
	cloneNative bool
	cloneDisasm bool
)

var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Build a value in a child thread and return it to the main thread",
	Long: `clone builds the record {1: 5, "x"} in the heap of a child thread and
returns it to the main thread, which deep clones it into the root generation.

--shared adds a record whose two fields are the same string, --cycle adds a
closure capturing itself and --native adds an extern function, which cannot
be cloned and makes the whole return fail. --disassemble prints the code of
the closure added by --cycle.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newMachine()
		child, err := m.Spawn()
		if err != nil {
			return err
		}
		thread := child.Get()
		gc := thread.Gc()

		x, err := runtime.NewString(gc, "x")
		if err != nil {
			return err
		}
		thread.PushValue(runtime.Int(5))
		thread.PushValue(x)
		count := 2

		if cloneShared {
			shared, err := runtime.NewData(gc, 2, x, x)
			if err != nil {
				return err
			}
			thread.PushValue(shared)
			count++
		}
		if cloneCycle {
			// Compiled code lives in the root heap, where the clone can keep
			// referring to it.
			fn, err := runtime.NewFunction(m.Gc(), loopFunction())
			if err != nil {
				return err
			}
			if cloneDisasm {
				fn.Get().Disassemble(cmd.OutOrStdout())
			}
			loop, err := runtime.NewRecursiveClosure(gc, fn, 1, func(self runtime.Closure) []runtime.Value {
				return []runtime.Value{self}
			})
			if err != nil {
				return err
			}
			thread.PushValue(loop)
			count++
		}
		if cloneNative {
			native, err := runtime.NewExtern(gc, "print", 1, func(*runtime.VMThread) runtime.Status {
				return runtime.StatusOk
			})
			if err != nil {
				return err
			}
			thread.PushValue(native)
			count++
		}

		if err := thread.Construct(1, count); err != nil {
			return err
		}
		source := thread.PeekOneValue()
		printf(cmd, "source (generation %d): %s\n", source.Generation(), render(source))

		if err := thread.Return(); err != nil {
			return err
		}
		result := m.MainThread().PeekOneValue()
		printf(cmd, "clone  (generation %d): %s\n", result.Generation(), render(result))

		fields := result.(runtime.Data).Get().Fields()
		described := underscore.Map(fields, func(v runtime.Value) string {
			s := v.Kind().String() + "@" + strconv.FormatUint(uint64(v.Generation()), 10)
			if c, ok := v.(runtime.Closure); ok {
				s += " (fn@" + strconv.FormatUint(uint64(c.Get().FunctionPtr().Generation()), 10) + ")"
			}
			return s
		})
		printf(cmd, "fields: %s\n", strings.Join(described, ", "))
		return nil
	},
}

// loop builds the record {1: n, "x"} from its argument and calls itself with
// it.
func loopFunction() runtime.BytecodeFunction {
	var w runtime.CodeWriter
	w.WriteOp(runtime.STRING).WriteU16(0)
	w.WriteOp(runtime.CONSTRUCT).WriteI32(1).WriteU8(2)
	w.WriteOp(runtime.CONSTANT).WriteU16(0)
	w.WriteOp(runtime.TAILCALL).WriteU8(1)
	return runtime.BytecodeFunction{
		Name:         "loop",
		Args:         1,
		Instructions: w.Code(),
		Strings:      []string{"x"},
		Globals:      []runtime.Value{runtime.Int(1)},
	}
}

func init() {
	cloneCmd.Flags().BoolVar(&cloneShared, "shared", false, "add a record sharing one string twice")
	cloneCmd.Flags().BoolVar(&cloneCycle, "cycle", false, "add a closure that captures itself")
	cloneCmd.Flags().BoolVar(&cloneNative, "native", false, "add an extern function, which cannot be cloned")
	cloneCmd.Flags().BoolVar(&cloneDisasm, "disassemble", false, "print the code of the closure added by --cycle")
	rootCmd.AddCommand(cloneCmd)
}
