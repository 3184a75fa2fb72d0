package lexer

import (
	"fmt"

	"github.com/dannybpoulsen/utap/internal/position"
)

// TokenType represents the type of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenIdentifier
	TokenInteger

	// Keywords
	TokenConst
	TokenSelect
	TokenGuard
	TokenSync
	TokenAssign
	TokenProcess
	TokenState
	TokenInit
	TokenTrans
	TokenUrgent
	TokenCommit
	TokenWinning
	TokenLosing
	TokenBroadcast
	TokenSystem
	TokenTrue
	TokenFalse
	TokenAnd2 // keyword form of &&
	TokenOr2  // keyword form of ||
	TokenNot2 // keyword form of !
	TokenImply
	TokenFor
	TokenWhile
	TokenDo
	TokenIf
	TokenElse
	TokenReturn
	TokenBreak
	TokenContinue
	TokenTypedef
	TokenStruct
	TokenMeta
	TokenBefore
	TokenAfter
	TokenProgress
	TokenForall
	TokenDeadlock
	TokenChanPriority
	TokenProcPriority
	TokenQuit

	// Type names that are not reserved words in the old syntax but
	// are treated as keywords here
	TokenInt
	TokenBool
	TokenClock
	TokenChan
	TokenScalar
	TokenVoid

	// Operators
	TokenPlus
	TokenMinus
	TokenMul
	TokenDiv
	TokenMod
	TokenAssignOp
	TokenPlusAssign
	TokenMinusAssign
	TokenMulAssign
	TokenDivAssign
	TokenModAssign
	TokenAndAssign
	TokenOrAssign
	TokenXorAssign
	TokenShlAssign
	TokenShrAssign
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenAndAnd
	TokenOrOr
	TokenNot
	TokenBitAnd
	TokenBitOr
	TokenBitXor
	TokenShl
	TokenShr
	TokenMinOp // <?
	TokenMaxOp // >?
	TokenInc
	TokenDec
	TokenPrime // rate marker on cost expressions
	TokenLeadsTo

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenColon
	TokenComma
	TokenDot
	TokenQuestion
	TokenArrow // ->

)

var tokenNames = map[TokenType]string{
	TokenEOF:          "eof",
	TokenError:        "error",
	TokenIdentifier:   "identifier",
	TokenInteger:      "integer",
	TokenConst:        "const",
	TokenSelect:       "select",
	TokenGuard:        "guard",
	TokenSync:         "sync",
	TokenAssign:       "assign",
	TokenProcess:      "process",
	TokenState:        "state",
	TokenInit:         "init",
	TokenTrans:        "trans",
	TokenUrgent:       "urgent",
	TokenCommit:       "commit",
	TokenWinning:      "winning",
	TokenLosing:       "losing",
	TokenBroadcast:    "broadcast",
	TokenSystem:       "system",
	TokenTrue:         "true",
	TokenFalse:        "false",
	TokenAnd2:         "and",
	TokenOr2:          "or",
	TokenNot2:         "not",
	TokenImply:        "imply",
	TokenFor:          "for",
	TokenWhile:        "while",
	TokenDo:           "do",
	TokenIf:           "if",
	TokenElse:         "else",
	TokenReturn:       "return",
	TokenBreak:        "break",
	TokenContinue:     "continue",
	TokenTypedef:      "typedef",
	TokenStruct:       "struct",
	TokenMeta:         "meta",
	TokenBefore:       "before_update",
	TokenAfter:        "after_update",
	TokenProgress:     "progress",
	TokenForall:       "forall",
	TokenDeadlock:     "deadlock",
	TokenChanPriority: "chan_priority",
	TokenProcPriority: "proc_priority",
	TokenQuit:         "quit",
	TokenInt:          "int",
	TokenBool:         "bool",
	TokenClock:        "clock",
	TokenChan:         "chan",
	TokenScalar:       "scalar",
	TokenVoid:         "void",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenMul:          "*",
	TokenDiv:          "/",
	TokenMod:          "%",
	TokenAssignOp:     "=",
	TokenPlusAssign:   "+=",
	TokenMinusAssign:  "-=",
	TokenMulAssign:    "*=",
	TokenDivAssign:    "/=",
	TokenModAssign:    "%=",
	TokenAndAssign:    "&=",
	TokenOrAssign:     "|=",
	TokenXorAssign:    "^=",
	TokenShlAssign:    "<<=",
	TokenShrAssign:    ">>=",
	TokenEq:           "==",
	TokenNe:           "!=",
	TokenLt:           "<",
	TokenLe:           "<=",
	TokenGt:           ">",
	TokenGe:           ">=",
	TokenAndAnd:       "&&",
	TokenOrOr:         "||",
	TokenNot:          "!",
	TokenBitAnd:       "&",
	TokenBitOr:        "|",
	TokenBitXor:       "^",
	TokenShl:          "<<",
	TokenShr:          ">>",
	TokenMinOp:        "<?",
	TokenMaxOp:        ">?",
	TokenInc:          "++",
	TokenDec:          "--",
	TokenPrime:        "'",
	TokenLeadsTo:      "-->",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenLBrace:       "{",
	TokenRBrace:       "}",
	TokenLBracket:     "[",
	TokenRBracket:     "]",
	TokenSemicolon:    ";",
	TokenColon:        ":",
	TokenComma:        ",",
	TokenDot:          ".",
	TokenQuestion:     "?",
	TokenArrow:        "->",
}

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(tt))
}

// Token is a single lexical unit with its source position.
type Token struct {
	Type  TokenType
	Text  string
	Value int32 // value of integer literals
	Pos   position.Position
}

func (t Token) String() string {
	switch t.Type {
	case TokenIdentifier, TokenInteger:
		return t.Text
	default:
		return t.Type.String()
	}
}

// keywords is the reserved-word table of the declaration syntax.
var keywords = map[string]TokenType{
	"const":         TokenConst,
	"select":        TokenSelect,
	"guard":         TokenGuard,
	"sync":          TokenSync,
	"assign":        TokenAssign,
	"process":       TokenProcess,
	"state":         TokenState,
	"init":          TokenInit,
	"trans":         TokenTrans,
	"urgent":        TokenUrgent,
	"commit":        TokenCommit,
	"winning":       TokenWinning,
	"losing":        TokenLosing,
	"broadcast":     TokenBroadcast,
	"system":        TokenSystem,
	"true":          TokenTrue,
	"false":         TokenFalse,
	"and":           TokenAnd2,
	"or":            TokenOr2,
	"not":           TokenNot2,
	"imply":         TokenImply,
	"for":           TokenFor,
	"while":         TokenWhile,
	"do":            TokenDo,
	"if":            TokenIf,
	"else":          TokenElse,
	"return":        TokenReturn,
	"break":         TokenBreak,
	"continue":      TokenContinue,
	"typedef":       TokenTypedef,
	"struct":        TokenStruct,
	"meta":          TokenMeta,
	"before_update": TokenBefore,
	"after_update":  TokenAfter,
	"progress":      TokenProgress,
	"forall":        TokenForall,
	"deadlock":      TokenDeadlock,
	"chan_priority": TokenChanPriority,
	"proc_priority": TokenProcPriority,
	"quit":          TokenQuit,
	"int":           TokenInt,
	"bool":          TokenBool,
	"clock":         TokenClock,
	"chan":          TokenChan,
	"scalar":        TokenScalar,
	"void":          TokenVoid,
}

// IsKeyword returns true if the identifier is a reserved word.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}
