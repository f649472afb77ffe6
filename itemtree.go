package flux

// ItemTree is the per-file summary of top-level declarations, built by
// walking a single file's green tree without lowering any bodies. Grounded
// on original_source/compiler/flux_hir/src/item.rs and item_bodies.rs: a
// function's signature (name, params, return type) is collected here, its
// body stays an opaque *GreenNode until HIR lowering (C10) actually needs
// it, so signature collection for an entire package never pays the cost of
// lowering a body it might not need yet.
type ItemKind int

const (
	ItemKindFn ItemKind = iota
	ItemKindStruct
	ItemKindEnum
	ItemKindTrait
	ItemKindApply
	ItemKindUse
	ItemKindMod
)

// ItemID addresses one item within a module's ItemTree.
type ItemID struct {
	Module ModuleID
	Kind   ItemKind
	Index  int
}

type FunctionItem struct {
	Name        Word
	Visible     bool
	Node        *GreenNode
	Generics    *GreenNode // SynGenericParamList, nil if absent
	WhereClause *GreenNode // SynWhereClause, nil if absent
	ParamList   *GreenNode // SynParamList
	ReturnType  *GreenNode // the type node inside SynFnReturnType, nil if absent
	Body        *GreenNode // SynBlockExpr or SynArrowBody, nil for a trait method signature
}

type FieldItem struct {
	Name    Word
	Visible bool
	Type    *GreenNode
}

type StructItem struct {
	Name        Word
	Visible     bool
	Node        *GreenNode
	Generics    *GreenNode
	WhereClause *GreenNode
	Fields      []FieldItem
}

type VariantItem struct {
	Name   Word
	Fields []*GreenNode
}

type EnumItem struct {
	Name        Word
	Visible     bool
	Node        *GreenNode
	Generics    *GreenNode
	WhereClause *GreenNode
	Variants    []VariantItem
}

type MethodSigItem struct {
	Name       Word
	ParamList  *GreenNode
	ReturnType *GreenNode
}

type AssocTypeDeclItem struct {
	Name Word
}

type TraitItem struct {
	Name        Word
	Visible     bool
	Node        *GreenNode
	Generics    *GreenNode
	WhereClause *GreenNode
	Methods     []MethodSigItem
	AssocTypes  []AssocTypeDeclItem
}

type AssocTypeBindingItem struct {
	Name Word
	Type *GreenNode
}

// ApplyItem models both trait applications and inherent applications, spec
// section 4.7. The grammar always parses one leading path followed by an
// optional `to <type>`: when TargetType is nil, there was no `to` clause
// and TraitPath names the inherent apply's target type directly; when
// TargetType is set, TraitPath names the trait being applied and
// TargetType is the real target.
type ApplyItem struct {
	Node        *GreenNode
	Generics    *GreenNode
	WhereClause *GreenNode
	TraitPath   *GreenNode // SynPath
	TargetType  *GreenNode // nil for an inherent apply
	Methods     []FunctionItem
	AssocBinds  []AssocTypeBindingItem
}

type UseItem struct {
	Node *GreenNode
	Path *GreenNode // SynPath
}

type ModItem struct {
	Name    Word
	Visible bool
	Node    *GreenNode
	// Inline holds the nested item* body of `mod foo { ... }`, nil for a
	// file-backed `mod foo;`. The module collector (C7) builds an inline
	// mod's module straight from this body, without opening a file.
	Inline *GreenNode
}

type ItemTree struct {
	Functions []FunctionItem
	Structs   []StructItem
	Enums     []EnumItem
	Traits    []TraitItem
	Applies   []ApplyItem
	Uses      []UseItem
	Mods      []ModItem
}

var typeNodeKinds = map[SyntaxKind]bool{
	SynPathType:     true,
	SynTupleType:    true,
	SynArrayType:    true,
	SynPointerType:  true,
	SynThisPathType: true,
}

// firstTypeChild returns the first direct child of n that is a type node,
// used wherever the grammar places exactly one type after some fixed
// prefix (a field's `:`, a return type's `->`, ...).
func firstTypeChild(n *GreenNode) *GreenNode {
	if n == nil {
		return nil
	}
	for _, c := range n.ChildNodes() {
		if typeNodeKinds[c.Kind] {
			return c
		}
	}
	return nil
}

func allTypeChildren(n *GreenNode) []*GreenNode {
	if n == nil {
		return nil
	}
	var out []*GreenNode
	for _, c := range n.ChildNodes() {
		if typeNodeKinds[c.Kind] {
			out = append(out, c)
		}
	}
	return out
}

func itemName(n *GreenNode, interner *Interner) Word {
	nameNode := n.FirstChild(SynName)
	if nameNode == nil {
		return interner.Intern("")
	}
	tok, ok := nameNode.FirstToken(KindIdent)
	if !ok {
		return interner.Intern("")
	}
	return interner.Intern(tok.Text)
}

func isVisible(n *GreenNode) bool {
	return n.FirstChild(SynVisibility) != nil
}

// BuildItemTree walks a file's top-level items (Root's direct children)
// into an ItemTree. It never descends into expression or statement bodies.
func BuildItemTree(root *GreenNode, interner *Interner) *ItemTree {
	tree := &ItemTree{}
	for _, child := range root.ChildNodes() {
		switch child.Kind {
		case SynFnDecl:
			tree.Functions = append(tree.Functions, buildFunctionItem(child, interner))
		case SynStructDecl:
			tree.Structs = append(tree.Structs, buildStructItem(child, interner))
		case SynEnumDecl:
			tree.Enums = append(tree.Enums, buildEnumItem(child, interner))
		case SynTraitDecl:
			tree.Traits = append(tree.Traits, buildTraitItem(child, interner))
		case SynApplyDecl:
			tree.Applies = append(tree.Applies, buildApplyItem(child, interner))
		case SynUseDecl:
			tree.Uses = append(tree.Uses, UseItem{Node: child, Path: child.FirstChild(SynPath)})
		case SynModDecl:
			tree.Mods = append(tree.Mods, buildModItem(child, interner))
		}
	}
	return tree
}

func buildFunctionItem(n *GreenNode, interner *Interner) FunctionItem {
	return FunctionItem{
		Name:        itemName(n, interner),
		Visible:     isVisible(n),
		Node:        n,
		Generics:    n.FirstChild(SynGenericParamList),
		WhereClause: n.FirstChild(SynWhereClause),
		ParamList:   n.FirstChild(SynParamList),
		ReturnType:  firstTypeChild(n.FirstChild(SynFnReturnType)),
		Body:        functionBody(n),
	}
}

// functionBody returns whichever of the two body forms spec section 4.2
// allows is present: a braced block, or a `=>` arrow-shorthand body. Both
// are tagged distinctly in the CST (SynBlockExpr vs SynArrowBody); C10
// tells them apart the same way when lowering.
func functionBody(n *GreenNode) *GreenNode {
	if b := n.FirstChild(SynBlockExpr); b != nil {
		return b
	}
	return n.FirstChild(SynArrowBody)
}

func buildStructItem(n *GreenNode, interner *Interner) StructItem {
	item := StructItem{
		Name:        itemName(n, interner),
		Visible:     isVisible(n),
		Node:        n,
		Generics:    n.FirstChild(SynGenericParamList),
		WhereClause: n.FirstChild(SynWhereClause),
	}
	fieldList := n.FirstChild(SynFieldList)
	if fieldList == nil {
		return item
	}
	for _, f := range fieldList.ChildNodes() {
		if f.Kind != SynField {
			continue
		}
		item.Fields = append(item.Fields, FieldItem{
			Name:    itemName(f, interner),
			Visible: isVisible(f),
			Type:    firstTypeChild(f),
		})
	}
	return item
}

func buildEnumItem(n *GreenNode, interner *Interner) EnumItem {
	item := EnumItem{
		Name:        itemName(n, interner),
		Visible:     isVisible(n),
		Node:        n,
		Generics:    n.FirstChild(SynGenericParamList),
		WhereClause: n.FirstChild(SynWhereClause),
	}
	variantList := n.FirstChild(SynVariantList)
	if variantList == nil {
		return item
	}
	for _, v := range variantList.ChildNodes() {
		if v.Kind != SynVariant {
			continue
		}
		item.Variants = append(item.Variants, VariantItem{
			Name:   itemName(v, interner),
			Fields: allTypeChildren(v),
		})
	}
	return item
}

func buildTraitItem(n *GreenNode, interner *Interner) TraitItem {
	item := TraitItem{
		Name:        itemName(n, interner),
		Visible:     isVisible(n),
		Node:        n,
		Generics:    n.FirstChild(SynGenericParamList),
		WhereClause: n.FirstChild(SynWhereClause),
	}
	for _, c := range n.ChildNodes() {
		switch c.Kind {
		case SynMethodSig:
			item.Methods = append(item.Methods, MethodSigItem{
				Name:       itemName(c, interner),
				ParamList:  c.FirstChild(SynParamList),
				ReturnType: firstTypeChild(c.FirstChild(SynFnReturnType)),
			})
		case SynAssocTypeDecl:
			item.AssocTypes = append(item.AssocTypes, AssocTypeDeclItem{Name: itemName(c, interner)})
		}
	}
	return item
}

func buildApplyItem(n *GreenNode, interner *Interner) ApplyItem {
	item := ApplyItem{
		Node:        n,
		Generics:    n.FirstChild(SynGenericParamList),
		WhereClause: n.FirstChild(SynWhereClause),
		TraitPath:   n.FirstChild(SynPath),
	}
	typeChildren := allTypeChildren(n)
	if len(typeChildren) > 0 {
		item.TargetType = typeChildren[len(typeChildren)-1]
	}
	for _, c := range n.ChildNodes() {
		switch c.Kind {
		case SynFnDecl:
			item.Methods = append(item.Methods, buildFunctionItem(c, interner))
		case SynAssocTypeBinding:
			item.AssocBinds = append(item.AssocBinds, AssocTypeBindingItem{
				Name: itemName(c, interner),
				Type: firstTypeChild(c),
			})
		}
	}
	return item
}

func buildModItem(n *GreenNode, interner *Interner) ModItem {
	item := ModItem{
		Name:    itemName(n, interner),
		Visible: isVisible(n),
		Node:    n,
	}
	for _, c := range n.ChildNodes() {
		switch c.Kind {
		case SynFnDecl, SynStructDecl, SynEnumDecl, SynTraitDecl, SynApplyDecl, SynUseDecl, SynModDecl:
			item.Inline = n
		}
	}
	return item
}
