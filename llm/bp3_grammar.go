package llm

// GetBP3Grammar returns the Lark grammar for the BP3 subset the composer writes.
// Anything it accepts is accepted by agents/grammar.Parse.
//
//	ORD
//	gram#1[1] S --> Intro Theme
//	-----
//	RND
//	gram#2[1] <3> Theme --> do4 re4 {2, mi4 fa4, sol3}
func GetBP3Grammar() string {
	return `
// BP3 Grammar - Bol Processor rule blocks
// SYNTAX:
//   // comment                     header comment
//   -se.name / -al.name            settings and alphabet references
//   ORD | RND | LIN | SUB1 | SUB   block mode, one per block
//   _mm(120) _vel(90)              optional block preamble
//   gram#1[2] <3> /Ideas/ S --> A B /Ideas-1/
//   -----                          block separator
//
// RIGHT-HAND SIDE ELEMENTS:
//   do4 re#4 sib3                  French notes (do re mi fa sol la si, # or b, octave)
//   sa4 dha4                       Indian notes (sa re ga ma pa dha ni, octave)
//   C4 D#5 Bb3                     English pitch names
//   dha tin ek                     terminals (lowercase words)
//   Theme Intro                    non-terminals (capitalized words)
//   - _                            rest, prolongation
//   {2, A B, C}                    polymetric expression with tempo ratio
//   _vel(80) _transpose(2)         directives
//   lambda                         empty right-hand side

// ---------- Start rule ----------
start: header* block+

// ---------- Headers ----------
header: (COMMENT_LINE | FILE_REF) NL

// ---------- Blocks ----------
block: MODE NL preamble? rule+ separator?
preamble: directive (SP directive)* NL
separator: SEPARATOR NL

// ---------- Rules ----------
rule: RULE_ID SP (WEIGHT SP)? (FLAG SP)* lhs SP ARROW rhs NL
lhs: NON_TERMINAL (SP NON_TERMINAL)*
rhs: SP "lambda"
   | (SP rhs_item)+
rhs_item: element
        | FLAG

// ---------- Elements ----------
element: NOTE
       | PITCH_NAME
       | TERMINAL
       | NON_TERMINAL
       | REST
       | directive
       | polymetric

polymetric: "{" (RATIO "," SP?)? voice ("," SP? voice)* "}"
voice: element (SP element)*

directive: "_" DIRECTIVE_NAME ("(" ARGS ")")?

// ---------- Terminals ----------
MODE: "ORD" | "RND" | "LIN" | "SUB1" | "SUB"
RULE_ID: /gram#[0-9]+\[[0-9]+\]/
WEIGHT: /<[0-9]+(-[0-9]+)?>/
FLAG: /\/[A-Za-z][A-Za-z0-9_]*([=+\-<>][0-9]+)?\//
ARROW: "-->"
NOTE: /(do|re|mi|fa|sol|la|si)(#|b)?[0-9]/
    | /(sa|re|ga|ma|pa|dha|ni)[0-9]/
PITCH_NAME: /[A-G](#|b)?[0-9]/
NON_TERMINAL: /[A-Z][A-Za-z0-9_]*/
TERMINAL: /[a-z][a-z0-9_]*/
REST: "-" | "_"
RATIO: /[1-9][0-9]*/
DIRECTIVE_NAME: /[a-z][a-z_]*/
ARGS: /[A-Za-z0-9_.+\-\/, ]*/
COMMENT_LINE: /\/\/[^\n]*/
FILE_REF: /-(se|al|ho|gr)\.[A-Za-z0-9_.\-]+/
SEPARATOR: /-----*/
SP: " "+
NL: /\n+/
`
}
