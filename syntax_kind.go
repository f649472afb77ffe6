package flux

// SyntaxKind distinguishes green-tree nodes. Nodes carry no semantic data;
// they are distinguished purely by kind (spec section 3).
type SyntaxKind int

const (
	SynError SyntaxKind = iota
	SynRoot

	// items
	SynFnDecl
	SynStructDecl
	SynEnumDecl
	SynTraitDecl
	SynApplyDecl
	SynUseDecl
	SynModDecl
	SynVisibility
	SynName

	// signatures
	SynParamList
	SynParam
	SynFnReturnType
	SynGenericParamList
	SynGenericParam
	SynGenericArgList
	SynWhereClause
	SynWherePred
	SynFieldList
	SynField
	SynVariantList
	SynVariant
	SynMethodSig
	SynAssocTypeDecl
	SynAssocTypeBinding

	// types
	SynPathType
	SynTupleType
	SynArrayType
	SynPointerType
	SynThisPathType

	// paths
	SynPath
	SynPathSegment

	// statements
	SynBlockExpr
	SynArrowBody
	SynLetStmt
	SynExprStmt
	SynReturnExpr

	// expressions
	SynIfExpr
	SynBinaryExpr
	SynUnaryExpr
	SynCallExpr
	SynArgList
	SynMemberExpr
	SynIndexExpr
	SynTupleExpr
	SynParenExpr
	SynStructExpr
	SynStructExprField
	SynPathExpr
	SynLiteralExpr
)

var syntaxKindNames = map[SyntaxKind]string{
	SynError:             "Error",
	SynRoot:              "Root",
	SynFnDecl:            "FnDecl",
	SynStructDecl:        "StructDecl",
	SynEnumDecl:          "EnumDecl",
	SynTraitDecl:         "TraitDecl",
	SynApplyDecl:         "ApplyDecl",
	SynUseDecl:           "UseDecl",
	SynModDecl:           "ModDecl",
	SynVisibility:        "Visibility",
	SynName:              "Name",
	SynParamList:         "ParamList",
	SynParam:             "Param",
	SynFnReturnType:      "FnReturnType",
	SynGenericParamList:  "GenericParamList",
	SynGenericParam:      "GenericParam",
	SynGenericArgList:    "GenericArgList",
	SynWhereClause:       "WhereClause",
	SynWherePred:         "WherePred",
	SynFieldList:         "FieldList",
	SynField:             "Field",
	SynVariantList:       "VariantList",
	SynVariant:           "Variant",
	SynMethodSig:         "MethodSig",
	SynAssocTypeDecl:     "AssocTypeDecl",
	SynAssocTypeBinding:  "AssocTypeBinding",
	SynPathType:          "PathType",
	SynTupleType:         "TupleType",
	SynArrayType:         "ArrayType",
	SynPointerType:       "PointerType",
	SynThisPathType:      "ThisPathType",
	SynPath:              "Path",
	SynPathSegment:       "PathSegment",
	SynBlockExpr:         "BlockExpr",
	SynArrowBody:         "ArrowBody",
	SynLetStmt:           "LetStmt",
	SynExprStmt:          "ExprStmt",
	SynReturnExpr:        "ReturnExpr",
	SynIfExpr:            "IfExpr",
	SynBinaryExpr:        "BinaryExpr",
	SynUnaryExpr:         "UnaryExpr",
	SynCallExpr:          "CallExpr",
	SynArgList:           "ArgList",
	SynMemberExpr:        "MemberExpr",
	SynIndexExpr:         "IndexExpr",
	SynTupleExpr:         "TupleExpr",
	SynParenExpr:         "ParenExpr",
	SynStructExpr:        "StructExpr",
	SynStructExprField:   "StructExprField",
	SynPathExpr:          "PathExpr",
	SynLiteralExpr:       "LiteralExpr",
}

func (k SyntaxKind) String() string {
	if name, ok := syntaxKindNames[k]; ok {
		return name
	}
	return "Unknown"
}
