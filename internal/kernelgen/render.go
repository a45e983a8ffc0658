package kernelgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quarrylabs/quarry/internal/scalarir"
)

// renderer turns scalar expressions into kernel statement text.
//
// It is intentionally closed: a shape outside the scalarir grammar is an
// UnsupportedExpressionError, never silently skipped. Rendering is a
// single pass into one growable buffer with explicit separators, so the
// empty-statement case is explicit and accumulation stays linear.
type renderer struct {
	vars          []*scalarir.Variable
	continueLabel string
}

// renderExpr renders one expression to text.
func (r *renderer) renderExpr(e scalarir.Expr) (string, error) {
	var b strings.Builder
	if err := r.write(&b, e); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderStatements renders accumulated statements in the given order,
// one per line, each terminated with ";". An empty list renders to "".
func (r *renderer) renderStatements(stmts []scalarir.Expr) (string, error) {
	var b strings.Builder
	for i, stmt := range stmts {
		if i > 0 {
			b.WriteString("\n")
		}
		if err := r.write(&b, stmt); err != nil {
			return "", err
		}
		b.WriteString(";")
	}
	return b.String(), nil
}

// renderDecls renders the declared-variable list as kernel declarations,
// one per line.
func (r *renderer) renderDecls() (string, error) {
	var b strings.Builder
	for i, v := range r.vars {
		if i > 0 {
			b.WriteString("\n")
		}
		token, err := TypeToken(v.Type)
		if err != nil {
			return "", err
		}
		name, err := varName(v, r.vars)
		if err != nil {
			return "", err
		}
		b.WriteString(token)
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(";")
	}
	return b.String(), nil
}

func (r *renderer) write(b *strings.Builder, e scalarir.Expr) error {
	switch node := e.(type) {
	case scalarir.Constant:
		return r.writeConstant(b, node)
	case *scalarir.Variable:
		name, err := varName(node, r.vars)
		if err != nil {
			return err
		}
		b.WriteString(name)
		return nil
	case scalarir.Assign:
		name, err := varName(node.Target, r.vars)
		if err != nil {
			return err
		}
		b.WriteString(name)
		b.WriteString(" = ")
		return r.write(b, node.Value)
	case scalarir.BinaryOp:
		token, ok := node.Op.Token()
		if !ok {
			return &UnsupportedExpressionError{Expr: node, Message: fmt.Sprintf("unknown operator %d", node.Op)}
		}
		b.WriteString("(")
		if err := r.write(b, node.Left); err != nil {
			return err
		}
		b.WriteString(" ")
		b.WriteString(token)
		b.WriteString(" ")
		if err := r.write(b, node.Right); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case scalarir.Conditional:
		b.WriteString("if (")
		if err := r.write(b, node.Test); err != nil {
			return err
		}
		b.WriteString(") ")
		if err := r.writeBranch(b, node.Then); err != nil {
			return err
		}
		b.WriteString(" else ")
		return r.writeBranch(b, node.Else)
	case scalarir.ContinueJump:
		b.WriteString("goto ")
		b.WriteString(r.continueLabel)
		return nil
	case scalarir.Block:
		for i, child := range node.Exprs {
			if i > 0 {
				b.WriteString(";\n")
			}
			if err := r.write(b, child); err != nil {
				return err
			}
		}
		return nil
	case scalarir.Convert:
		token, err := TypeToken(node.Type)
		if err != nil {
			return err
		}
		b.WriteString("((")
		b.WriteString(token)
		b.WriteString(")")
		if err := r.write(b, node.Value); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case scalarir.Empty:
		return nil
	default:
		return &UnsupportedExpressionError{Expr: e, Message: "shape outside the renderer grammar"}
	}
}

// writeBranch renders a conditional branch as a braced statement. A
// non-empty branch gets a terminating ";" so multi-statement blocks stay
// valid kernel C.
func (r *renderer) writeBranch(b *strings.Builder, e scalarir.Expr) error {
	var inner strings.Builder
	if err := r.write(&inner, e); err != nil {
		return err
	}
	if inner.Len() == 0 {
		b.WriteString("{ }")
		return nil
	}
	b.WriteString("{ ")
	b.WriteString(inner.String())
	b.WriteString("; }")
	return nil
}

func (r *renderer) writeConstant(b *strings.Builder, c scalarir.Constant) error {
	switch c.Type {
	case scalarir.Int32, scalarir.Byte:
		n, ok := toInt64(c.Value)
		if !ok {
			return &UnsupportedExpressionError{Expr: c, Message: fmt.Sprintf("value %v is not an integer", c.Value)}
		}
		b.WriteString(strconv.FormatInt(n, 10))
		return nil
	case scalarir.Float32:
		f, ok := toFloat64(c.Value)
		if !ok {
			return &UnsupportedExpressionError{Expr: c, Message: fmt.Sprintf("value %v is not a float", c.Value)}
		}
		b.WriteString(floatLiteral(f, 32))
		b.WriteString("f")
		return nil
	case scalarir.Float64:
		f, ok := toFloat64(c.Value)
		if !ok {
			return &UnsupportedExpressionError{Expr: c, Message: fmt.Sprintf("value %v is not a float", c.Value)}
		}
		b.WriteString(floatLiteral(f, 64))
		return nil
	default:
		return &UnsupportedTypeError{Type: c.Type}
	}
}

// floatLiteral formats f and guarantees the text reads as a floating
// literal in kernel C (a bare "1" would parse as an int).
func floatLiteral(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case byte:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
