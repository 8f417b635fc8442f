package game

// Half is the half of an inning; the numeric values are persisted.
type Half int

const (
	Top    Half = 1
	Bottom Half = 2
)

func (h Half) String() string {
	switch h {
	case Top:
		return "TOP"
	case Bottom:
		return "BOTTOM"
	default:
		return "UNKNOWN"
	}
}

// Pitch model outcome indices.
const (
	pitchBall = iota
	pitchStrikeSwinging
	pitchFoul
	pitchInPlayHit
	pitchInPlayOut
	pitchStrikeLooking
)

// Hit type model outcome indices.
const (
	hitSingle = iota
	hitDouble
	hitTriple
	hitHomeRun
)

// Out type model outcome indices.
const (
	outFly = iota
	outGround
)

// binary models answer yes with index 1
const yes = 1

// event trigger chances
const (
	floodingChance      = 0.01
	coffeeBeanChance    = 0.05
	coffeeRallyChance   = 0.04
	crowsChance         = 0.02
	charmChance         = 0.02
	zapChance           = 0.02
	fieryChance         = 0.04
	acidicChance        = 0.04
	psychicChance       = 0.1
	aaChance            = 0.25
	aaaChance           = 0.5
	bigBucketChance     = 0.09
	loseTripleThreat    = 0.33
	tripleThreatInning  = 4
	regulationInnings   = 9
	winThreshold        = 10
	blaserunningBonus   = "0.2"
	tripleThreatPenalty = "-0.3"
	acidicRunPenalty    = "-0.1"
)

// walkPriors maps base count to the chance of walking to each extra base.
var walkPriors = map[int]map[int]float64{
	4: {2: 0.04, 3: 0.01},
	5: {2: 0.035, 3: 0.01, 4: 0.005},
}
