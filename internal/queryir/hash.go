package queryir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/quarrylabs/quarry/internal/scalarir"
)

// DomainKernel is the domain prefix for kernel cache keys.
// Version suffix enables future algorithm migration.
const DomainKernel = "quarry/kernel/v1"

// Hash computes a content-addressed identity for a query's compilable
// structure: operator shape, element types and scalar expressions.
//
// Array handles and lengths are deliberately excluded - the generated
// kernel source depends only on structure and types, so two queries over
// different arrays of the same type share a cache entry.
//
// Properties:
//   - Deterministic: the same query always yields the same hash.
//   - Label-normalized: variable labels are NFC normalized so visually
//     identical Unicode labels hash identically.
//   - Domain-separated: SHA256(domain + 0x00 + canonical form), so kernel
//     hashes can never collide with identities from other domains.
func Hash(q Expr) (string, error) {
	var b strings.Builder
	w := &hashWriter{vars: make(map[*scalarir.Variable]int)}
	if err := w.writeQuery(&b, q); err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(DomainKernel))
	h.Write([]byte{0x00}) // Null separator between domain and data
	h.Write([]byte(b.String()))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashWriter serializes a query to a canonical S-expression form.
// Variables are numbered by first occurrence so pointer identity becomes
// a stable ordinal.
type hashWriter struct {
	vars map[*scalarir.Variable]int
}

func (w *hashWriter) varOrdinal(v *scalarir.Variable) int {
	if n, ok := w.vars[v]; ok {
		return n
	}
	n := len(w.vars)
	w.vars[v] = n
	return n
}

func (w *hashWriter) writeVar(b *strings.Builder, v *scalarir.Variable) {
	fmt.Fprintf(b, "v%d:%s:%s", w.varOrdinal(v), norm.NFC.String(v.Label), v.Type)
}

func (w *hashWriter) writeQuery(b *strings.Builder, q Expr) error {
	switch node := q.(type) {
	case Source:
		fmt.Fprintf(b, "(source %s)", node.Elem)
		return nil
	case Transform:
		fmt.Fprintf(b, "(transform %s (", node.Elem)
		w.writeVar(b, node.Lambda.Param)
		b.WriteString(") ")
		if err := w.writeScalar(b, node.Lambda.Body); err != nil {
			return err
		}
		b.WriteString(" ")
		if err := w.writeQuery(b, node.Inner); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case Filter:
		b.WriteString("(filter (")
		w.writeVar(b, node.Predicate.Param)
		b.WriteString(") ")
		if err := w.writeScalar(b, node.Predicate.Body); err != nil {
			return err
		}
		b.WriteString(" ")
		if err := w.writeQuery(b, node.Inner); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case Sum:
		b.WriteString("(sum ")
		if err := w.writeQuery(b, node.Inner); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case Count:
		b.WriteString("(count ")
		if err := w.writeQuery(b, node.Inner); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case ZipWith:
		fmt.Fprintf(b, "(zip %s %s %s (", node.Elem, node.ArrA.Elem(), node.ArrB.Elem())
		w.writeVar(b, node.Lambda.ParamA)
		b.WriteString(" ")
		w.writeVar(b, node.Lambda.ParamB)
		b.WriteString(") ")
		if err := w.writeScalar(b, node.Lambda.Body); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case ToArray:
		b.WriteString("(toarray ")
		if err := w.writeQuery(b, node.Inner); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	default:
		return fmt.Errorf("hash: unknown query node %T", q)
	}
}

func (w *hashWriter) writeScalar(b *strings.Builder, e scalarir.Expr) error {
	switch node := e.(type) {
	case scalarir.Constant:
		fmt.Fprintf(b, "(const %s %v)", node.Type, node.Value)
		return nil
	case *scalarir.Variable:
		w.writeVar(b, node)
		return nil
	case scalarir.Assign:
		b.WriteString("(assign ")
		w.writeVar(b, node.Target)
		b.WriteString(" ")
		if err := w.writeScalar(b, node.Value); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case scalarir.BinaryOp:
		fmt.Fprintf(b, "(binop %d ", node.Op)
		if err := w.writeScalar(b, node.Left); err != nil {
			return err
		}
		b.WriteString(" ")
		if err := w.writeScalar(b, node.Right); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case scalarir.Conditional:
		b.WriteString("(cond ")
		if err := w.writeScalar(b, node.Test); err != nil {
			return err
		}
		b.WriteString(" ")
		if err := w.writeScalar(b, node.Then); err != nil {
			return err
		}
		b.WriteString(" ")
		if err := w.writeScalar(b, node.Else); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case scalarir.ContinueJump:
		b.WriteString("(continue)")
		return nil
	case scalarir.Block:
		b.WriteString("(block")
		for _, child := range node.Exprs {
			b.WriteString(" ")
			if err := w.writeScalar(b, child); err != nil {
				return err
			}
		}
		b.WriteString(")")
		return nil
	case scalarir.Convert:
		fmt.Fprintf(b, "(convert %s ", node.Type)
		if err := w.writeScalar(b, node.Value); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case scalarir.Empty:
		b.WriteString("(empty)")
		return nil
	default:
		return fmt.Errorf("hash: unknown scalar node %T", e)
	}
}
