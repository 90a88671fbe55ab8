package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/funvibe/sigil/internal/config"
	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/lexer"
	"github.com/funvibe/sigil/internal/parser"
)

// run executes a full program and returns the final value together
// with everything it printed.
func run(t *testing.T, src string) (Object, string) {
	t.Helper()
	tokens, lexErr := lexer.New(src).Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %s", lexErr)
	}
	program, parseErr := parser.New(tokens).ParseProgram()
	if parseErr != nil {
		t.Fatalf("parse error: %s", parseErr)
	}
	var out bytes.Buffer
	e := New(&out, config.DefaultLimits())
	return e.RunProgram(program), out.String()
}

func runFault(t *testing.T, src string) (*Fault, string) {
	t.Helper()
	result, out := run(t, src)
	f, ok := result.(*Fault)
	if !ok {
		t.Fatalf("expected a fault, got %T (%s), output %q", result, result.Inspect(), out)
	}
	return f, out
}

func wantInt(t *testing.T, obj Object, want int64) {
	t.Helper()
	i, ok := obj.(*Integer)
	if !ok {
		t.Fatalf("expected *Integer(%d), got %T (%s)", want, obj, obj.Inspect())
	}
	if i.Value != want {
		t.Errorf("expected %d, got %d", want, i.Value)
	}
}

func TestArithmeticPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"nested prefix arithmetic",
			`(@main (print (+ 1 (* 2 3) (- 10 4))))`,
			"13\n",
		},
		{
			"float arithmetic",
			`(@main (print (+ 1.5 2.25)))`,
			"3.75\n",
		},
		{
			"comparisons",
			`(@main (print (< 1 2) (<= 2 2) (> 1 2) (>= 3 2) (== 1 1) (!= 1 1)))`,
			"true true false true true false\n",
		},
		{
			"print joins with spaces and renders void",
			`(@main (print 1 "two" true void [1, "a"]))`,
			"1 two true void [1, \"a\"]\n",
		},
		{
			"concat stringifies",
			`(@main (print (concat "n=" 42)))`,
			"n=42\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, out := run(t, tt.src)
			if isFault(result) {
				t.Fatalf("unexpected fault: %s", result.Inspect())
			}
			if out != tt.want {
				t.Errorf("expected output %q, got %q", tt.want, out)
			}
		})
	}
}

func TestMixedNumericKindsFault(t *testing.T) {
	f, _ := runFault(t, `(@main (+ 1 2.5))`)
	if f.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindTypeMismatch, f.Kind)
	}
	if !strings.Contains(f.Message, "coerce") {
		t.Errorf("message should point at the coercion natives, got %q", f.Message)
	}
}

func TestLetSetWhile(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"let returns the bound value",
			`(@main (print (let x 5)))`,
			"5\n",
		},
		{
			"set updates the nearest binding and returns the new value",
			`(@main (let x 1) (print (set x 2)) (print x))`,
			"2\n2\n",
		},
		{
			"set reaches through child scopes",
			`(@main
				(let n 0)
				(@if true (set n 7))
				(print n))`,
			"7\n",
		},
		{
			"while mutations stay visible across iterations",
			`(@main
				(let i 0)
				(let total 0)
				(while (< i 5)
					(set total (+ total i))
					(set i (+ i 1)))
				(print total))`,
			"10\n",
		},
		{
			"while with a false condition never runs the body",
			`(@main (while false (print "never")) (print "done"))`,
			"done\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, out := run(t, tt.src)
			if isFault(result) {
				t.Fatalf("unexpected fault: %s", result.Inspect())
			}
			if out != tt.want {
				t.Errorf("expected output %q, got %q", tt.want, out)
			}
		})
	}
}

func TestSetBeforeDeclare(t *testing.T) {
	f, _ := runFault(t, `(@main (set x 1))`)
	if f.Kind != diagnostics.KindUnboundIdentifier {
		t.Errorf("expected %s, got %s", diagnostics.KindUnboundIdentifier, f.Kind)
	}
}

func TestSetConstant(t *testing.T) {
	f, _ := runFault(t, `
		(@const limit 10)
		(@main (set limit 11))`)
	if f.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindTypeMismatch, f.Kind)
	}
	if !strings.Contains(f.Message, "constant") {
		t.Errorf("unexpected message %q", f.Message)
	}
}

func TestWhileConditionMustBeBool(t *testing.T) {
	f, _ := runFault(t, `(@main (while 1 (print "x")))`)
	if f.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindTypeMismatch, f.Kind)
	}
}

func TestRecursiveFibonacci(t *testing.T) {
	src := `
		(@fn fib [n $int] $int
			(@ifelse (< n 2)
				n
				(+ (fib (- n 1)) (fib (- n 2)))))
		(@main (print (fib 5)) (print (fib 7)))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "5\n13\n" {
		t.Errorf("expected \"5\\n13\\n\", got %q", out)
	}
}

func TestIterativeFibonacci(t *testing.T) {
	src := `
		(@fn fib [n $int] $int
			(let a 0)
			(let b 1)
			(let i 0)
			(while (< i n)
				(let next (+ a b))
				(set a b)
				(set b next)
				(set i (+ i 1)))
			a)
		(@main (print (fib 8)))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "21\n" {
		t.Errorf("expected \"21\\n\", got %q", out)
	}
}

func TestGenericSum(t *testing.T) {
	src := `
		(@fn sum[#T $number] [nums $array[#T]] #T
			(@ifelse (== (len nums) 0)
				(as #T 0)
				(+ (head nums) (sum[#T] (tail nums)))))
		(@main
			(print (sum[$int] [1, 2, 3, 4, 5]))
			(print (sum[$float] [1.5, 2.5, 12.5])))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "15\n16.5\n" {
		t.Errorf("expected \"15\\n16.5\\n\", got %q", out)
	}
}

func TestGenericInferenceFromArguments(t *testing.T) {
	src := `
		(@fn first[#T] [xs $array[#T]] #T (head xs))
		(@main (print (first [10, 20, 30])))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "10\n" {
		t.Errorf("expected \"10\\n\", got %q", out)
	}
}

func TestGenericConstraintViolation(t *testing.T) {
	f, _ := runFault(t, `
		(@fn sum[#T $number] [nums $array[#T]] #T (head nums))
		(@main (sum ["a", "b"]))`)
	if f.Kind != diagnostics.KindConstraintViolation {
		t.Errorf("expected %s, got %s", diagnostics.KindConstraintViolation, f.Kind)
	}
}

func TestGenericNoWidening(t *testing.T) {
	// #T binds to $int at the first position and 2.5 does not fit
	f, _ := runFault(t, `
		(@fn pair[#T] [a #T, b #T] $bool (== (gettype a) (gettype b)))
		(@main (pair 1 2.5))`)
	if f.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindTypeMismatch, f.Kind)
	}
}

func TestGenericUnresolvedWithoutArguments(t *testing.T) {
	f, _ := runFault(t, `
		(@fn empty[#T] [] $array[#T] [])
		(@main (empty))`)
	if f.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindTypeMismatch, f.Kind)
	}
}

func TestGenericExplicitInstantiationWins(t *testing.T) {
	src := `
		(@fn empty[#T] [] $array[#T] [])
		(@main (print (len (empty[$int]))))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "0\n" {
		t.Errorf("expected \"0\\n\", got %q", out)
	}
}

func TestGenericExplicitCountMismatch(t *testing.T) {
	f, _ := runFault(t, `
		(@fn first[#T] [xs $array[#T]] #T (head xs))
		(@main (first[$int $int] [1]))`)
	if f.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindTypeMismatch, f.Kind)
	}
}

func TestMixedListRejectedByTypedSlot(t *testing.T) {
	f, _ := runFault(t, `
		(@fn first[#T] [xs $array[#T]] #T (head xs))
		(@main (first [1, "a"]))`)
	if f.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindTypeMismatch, f.Kind)
	}
}

func TestMixedListAcceptedByAny(t *testing.T) {
	src := `
		(@fn describe [xs $array[$any]] $int (len xs))
		(@main (print (describe [1, "a", true])))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "3\n" {
		t.Errorf("expected \"3\\n\", got %q", out)
	}
}

func TestClosureCapturesDefinitionScope(t *testing.T) {
	src := `
		(@const base 100)
		(@fn offset [n $int] $int (+ base n))
		(@main (let base 0) (print (offset 5)))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "105\n" {
		t.Errorf("expected \"105\\n\", got %q", out)
	}
}

func TestReturnedClosureOutlivesItsFrame(t *testing.T) {
	src := `
		(@fn counter [] $function
			(let n 0)
			(@fn tick [] $int
				(set n (+ n 1))
				n)
			tick)
		(@main
			(let t (counter))
			(t)
			(t)
			(print (t)))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "3\n" {
		t.Errorf("the closure must keep mutating its captured frame, got %q", out)
	}
}

func TestPureArithmeticIsDeterministic(t *testing.T) {
	tokens, _ := lexer.New(`(+ (* 3 7) (- 100 79))`).Tokenize()
	program, _ := parser.New(tokens).ParseProgram()

	for i := 0; i < 2; i++ {
		e := New(&bytes.Buffer{}, config.DefaultLimits())
		result := e.Eval(program.Nodes[0], NewEnclosedScope(e.GlobalScope()))
		wantInt(t, result, 42)
	}
}

func TestFunctionArityMismatch(t *testing.T) {
	f, _ := runFault(t, `
		(@fn double [n $int] $int (* n 2))
		(@main (double 1 2))`)
	if f.Kind != diagnostics.KindArityMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindArityMismatch, f.Kind)
	}
}

func TestReturnTypeChecked(t *testing.T) {
	f, _ := runFault(t, `
		(@fn bad [] $int "oops")
		(@main (bad))`)
	if f.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindTypeMismatch, f.Kind)
	}
}

func TestUntakenBranchIsNeverEvaluated(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"ifelse takes only one branch",
			`(@main (@ifelse true (print "yes") (print "no")))`,
			"yes\n",
		},
		{
			"untaken branch may reference unbound names",
			`(@main (@ifelse true (print "ok") (definitely-not-bound 1 2)))`,
			"ok\n",
		},
		{
			"if with false condition skips its body",
			`(@main (@if false (print "skipped")) (print "after"))`,
			"after\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, out := run(t, tt.src)
			if isFault(result) {
				t.Fatalf("unexpected fault: %s", result.Inspect())
			}
			if out != tt.want {
				t.Errorf("expected output %q, got %q", tt.want, out)
			}
		})
	}
}

func TestIfConditionMustBeBool(t *testing.T) {
	f, _ := runFault(t, `(@main (@if 1 (print "x")))`)
	if f.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("expected %s, got %s", diagnostics.KindTypeMismatch, f.Kind)
	}
}

func TestBranchBindingsDoNotLeak(t *testing.T) {
	f, _ := runFault(t, `(@main (@if true (let tmp 1)) (print tmp))`)
	if f.Kind != diagnostics.KindUnboundIdentifier {
		t.Errorf("expected %s, got %s", diagnostics.KindUnboundIdentifier, f.Kind)
	}
}

func TestAssertReporting(t *testing.T) {
	src := `(@main (@assert (== 1 1) (< 2 1)))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	want := "assert passed: (== 1 1)\nassert failed: (< 2 1)\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestRecursionLimit(t *testing.T) {
	src := `
		(@fn loop [n $int] $int (loop n))
		(@main (loop 1))`
	tokens, _ := lexer.New(src).Tokenize()
	program, _ := parser.New(tokens).ParseProgram()
	var out bytes.Buffer
	e := New(&out, config.Limits{EvalDepth: 50, ExpansionDepth: 10})
	result := e.RunProgram(program)
	f, ok := result.(*Fault)
	if !ok {
		t.Fatalf("expected a fault, got %T", result)
	}
	if f.Kind != diagnostics.KindRecursionLimit {
		t.Errorf("expected %s, got %s", diagnostics.KindRecursionLimit, f.Kind)
	}
}

func TestTopLevelShape(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind string
	}{
		{"missing main", `(@fn f [] $int 1)`, diagnostics.KindSyntaxError},
		{"duplicate main", `(@main (print 1)) (@main (print 2))`, diagnostics.KindSyntaxError},
		{"plain form at top level", `(print 1)`, diagnostics.KindSyntaxError},
		{"nested main", `(@main (@main (print 1)))`, diagnostics.KindSyntaxError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := runFault(t, tt.src)
			if f.Kind != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, f.Kind)
			}
		})
	}
}

func TestUnboundIdentifier(t *testing.T) {
	f, _ := runFault(t, `(@main (print missing))`)
	if f.Kind != diagnostics.KindUnboundIdentifier {
		t.Errorf("expected %s, got %s", diagnostics.KindUnboundIdentifier, f.Kind)
	}
}

func TestFaultAbortsRemainingStatements(t *testing.T) {
	_, out := runFault(t, `(@main (print "before") (head []) (print "after"))`)
	if out != "before\n" {
		t.Errorf("statements after the fault must not run, got output %q", out)
	}
}

func TestNestedFnBindsIntoEnclosingScope(t *testing.T) {
	src := `
		(@fn make [] $void
			(@fn made [] $int 42)
			void)
		(@main (make) (print "ok"))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "ok\n" {
		t.Errorf("expected \"ok\\n\", got %q", out)
	}
}

func TestListsShareByReference(t *testing.T) {
	src := `
		(@main
			(let xs [1, 2])
			(let ys xs)
			(push ys 3)
			(print (len xs)))`
	result, out := run(t, src)
	if isFault(result) {
		t.Fatalf("unexpected fault: %s", result.Inspect())
	}
	if out != "3\n" {
		t.Errorf("expected \"3\\n\", got %q", out)
	}
}

func TestLastStatementValueIsProgramResult(t *testing.T) {
	result, _ := run(t, `(@main (+ 40 2))`)
	wantInt(t, result, 42)
}
