package blocks

// Progress tracks score, level and multiplier for one match.
type Progress struct {
	Score      int
	Level      int
	Multiplier int

	levelStep  int
	blockScore int
}

// NewProgress starts at score 0, level 0, multiplier 1.
func NewProgress(r Rules) Progress {
	return Progress{
		Multiplier: 1,
		levelStep:  r.LevelStep,
		blockScore: r.BlockScore,
	}
}

// ApplyClear scores one placement.
// With lines and blocks both non-zero the score grows by
// lines*blocks*BlockScore*Multiplier and the multiplier goes up by one;
// otherwise the multiplier drops back to 1. It returns the score delta and
// the number of levels gained.
func (p *Progress) ApplyClear(lines, blocks int) (delta, levels int) {
	if lines == 0 || blocks == 0 {
		p.ResetMultiplier()
		return 0, 0
	}

	delta = lines * blocks * p.blockScore * p.Multiplier
	p.Score += delta
	p.Multiplier++

	for p.levelStep > 0 && p.Score >= p.NextLevelAt() {
		p.Level++
		levels++
	}
	return delta, levels
}

// ResetMultiplier sets the multiplier back to 1.
func (p *Progress) ResetMultiplier() {
	p.Multiplier = 1
}

// NextLevelAt is the score at which the next level is reached.
func (p Progress) NextLevelAt() int {
	return p.levelStep * (p.Level + 1)
}
