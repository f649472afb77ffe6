package flux

import "fmt"

func formatIntKind(k IntKind) string {
	if k.Signed {
		return fmt.Sprintf("s%d", k.Width)
	}
	return fmt.Sprintf("u%d", k.Width)
}

var floatKindNames = map[FloatKind]string{Float32: "f32", Float64: "f64"}

// describeItemName looks a TyPath's ItemID back up to the declared name it
// came from. pkg is nil in a few constructed-by-hand TEnvs (none in
// production code, but cheap to guard); falling back to the bare index
// keeps DescribeType from panicking on those.
func describeItemName(pkg *Package, id ItemID) string {
	if pkg == nil || int(id.Module) >= len(pkg.Modules) {
		return fmt.Sprintf("<item %d>", id.Index)
	}
	items := pkg.Modules[id.Module].Items
	switch id.Kind {
	case ItemKindStruct:
		if id.Index < len(items.Structs) {
			return pkg.Interner.Text(items.Structs[id.Index].Name)
		}
	case ItemKindEnum:
		if id.Index < len(items.Enums) {
			return pkg.Interner.Text(items.Enums[id.Index].Name)
		}
	case ItemKindTrait:
		if id.Index < len(items.Traits) {
			return pkg.Interner.Text(items.Traits[id.Index].Name)
		}
	case ItemKindFn:
		if id.Index < len(items.Functions) {
			return pkg.Interner.Text(items.Functions[id.Index].Name)
		}
	}
	return fmt.Sprintf("<item %d>", id.Index)
}

// DescribeType renders a TypeID's resolved form for diagnostic messages.
// Kept deliberately simple (no precedence-aware parenthesization beyond
// tuples/functions) since diagnostic text, unlike HIR pretty-printing,
// never needs to round-trip.
func DescribeType(te *TEnv, id TypeID) string {
	_, ty := te.Resolve(id)
	return describeTypeValue(te, ty)
}

func describeTypeValue(te *TEnv, ty Type) string {
	switch ty.Tag {
	case TyUnknown:
		return "_"
	case TyIntVar:
		if ty.IntHint != nil {
			return formatIntKind(*ty.IntHint)
		}
		return "{integer}"
	case TyFloatVar:
		return "{float}"
	case TyInt:
		return formatIntKind(ty.IntKind)
	case TyFloat:
		return floatKindNames[ty.FloatKind]
	case TyBool:
		return "bool"
	case TyStr:
		return "str"
	case TyUnit:
		return "()"
	case TyTuple:
		s := "("
		for i, e := range ty.Elems {
			if i > 0 {
				s += ", "
			}
			s += DescribeType(te, e)
		}
		return s + ")"
	case TyPointer:
		return "*" + DescribeType(te, ty.Pointee)
	case TyArray:
		return fmt.Sprintf("[%s; %d]", DescribeType(te, ty.Elem), ty.Len)
	case TyPath:
		s := describeItemName(te.pkg, ty.Path)
		if len(ty.Args) > 0 {
			s += "<"
			for i, a := range ty.Args {
				if i > 0 {
					s += ", "
				}
				s += DescribeType(te, a)
			}
			s += ">"
		}
		return s
	case TyGeneric:
		return fmt.Sprintf("generic(%d)", ty.Name)
	case TyFunction:
		s := "fn("
		for i, p := range ty.Params {
			if i > 0 {
				s += ", "
			}
			s += DescribeType(te, p)
		}
		return s + ") -> " + DescribeType(te, ty.Ret)
	case TyRef:
		return DescribeType(te, ty.Ref)
	default:
		return "?"
	}
}
