package syntax

// registerList expands "PUSH AF,BC,DE" into one statement per register.
func registerList(mnemonic string, ops []string) ([]string, bool) {
	if mnemonic != "PUSH" && mnemonic != "POP" || len(ops) < 2 {
		return nil, false
	}
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		if op == "" {
			return nil, false
		}
		out = append(out, mnemonic+" "+op)
	}
	return out, true
}

// pairHalves maps a 16-bit register pair to its high and low halves.
var pairHalves = map[string][2]string{
	"BC": {"B", "C"},
	"DE": {"D", "E"},
	"HL": {"H", "L"},
}

// fakeInstruction rewrites the sjasmplus fake instructions that have a
// fixed real equivalent:
//
//	LD rr,rr'   → LD hi,hi' : LD lo,lo'
//	SUB HL,rr   → OR A : SBC HL,rr
func fakeInstruction(mnemonic string, ops []string) ([]string, bool) {
	if len(ops) != 2 {
		return nil, false
	}
	switch mnemonic {
	case "LD":
		dst, ok1 := pairHalves[ops[0]]
		src, ok2 := pairHalves[ops[1]]
		if !ok1 || !ok2 {
			return nil, false
		}
		return []string{
			"LD " + dst[0] + "," + src[0],
			"LD " + dst[1] + "," + src[1],
		}, true
	case "SUB":
		if ops[0] != "HL" {
			return nil, false
		}
		switch ops[1] {
		case "BC", "DE", "HL", "SP":
			return []string{"OR A", "SBC HL," + ops[1]}, true
		}
	}
	return nil, false
}
