package game

// Result is a judgement tier. The zero value means no judgement was made.
type Result uint8

const (
	None Result = iota
	Perfect
	Great
	Good
	Bad
	Miss
)

var resultNames = [...]string{"None", "Perfect", "Great", "Good", "Bad", "Miss"}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "Unknown"
}

// Tiers lists the judgeable results from best to worst.
var Tiers = [...]Result{Perfect, Great, Good, Bad, Miss}

// Worse returns the lower quality of two results, ignoring None.
func Worse(a, b Result) Result {
	if a == None {
		return b
	}
	if b > a {
		return b
	}
	return a
}
