package roster

// Stlats are a player's raw attributes, grouped the way the models read
// them.
type Stlats struct {
	Buoyancy      float64 `json:"buoyancy" yaml:"buoyancy"`
	Divinity      float64 `json:"divinity" yaml:"divinity"`
	Martyrdom     float64 `json:"martyrdom" yaml:"martyrdom"`
	Moxie         float64 `json:"moxie" yaml:"moxie"`
	Musclitude    float64 `json:"musclitude" yaml:"musclitude"`
	Patheticism   float64 `json:"patheticism" yaml:"patheticism"`
	Thwackability float64 `json:"thwackability" yaml:"thwackability"`
	Tragicness    float64 `json:"tragicness" yaml:"tragicness"`

	Coldness         float64 `json:"coldness" yaml:"coldness"`
	Overpowerment    float64 `json:"overpowerment" yaml:"overpowerment"`
	Ruthlessness     float64 `json:"ruthlessness" yaml:"ruthlessness"`
	Shakespearianism float64 `json:"shakespearianism" yaml:"shakespearianism"`
	Suppression      float64 `json:"suppression" yaml:"suppression"`
	Unthwackability  float64 `json:"unthwackability" yaml:"unthwackability"`

	Anticapitalism float64 `json:"anticapitalism" yaml:"anticapitalism"`
	Chasiness      float64 `json:"chasiness" yaml:"chasiness"`
	Omniscience    float64 `json:"omniscience" yaml:"omniscience"`
	Tenaciousness  float64 `json:"tenaciousness" yaml:"tenaciousness"`
	Watchfulness   float64 `json:"watchfulness" yaml:"watchfulness"`

	BaseThirst     float64 `json:"base_thirst" yaml:"base_thirst"`
	Continuation   float64 `json:"continuation" yaml:"continuation"`
	GroundFriction float64 `json:"ground_friction" yaml:"ground_friction"`
	Indulgence     float64 `json:"indulgence" yaml:"indulgence"`
	Laserlikeness  float64 `json:"laserlikeness" yaml:"laserlikeness"`
}

// Feature vector lengths.
const (
	BattingLen  = 8
	PitchingLen = 6
	DefenseLen  = 5
	RunningLen  = 5
)

func (st Stlats) batting() []float64 {
	return []float64{st.Buoyancy, st.Divinity, st.Martyrdom, st.Moxie, st.Musclitude, st.Patheticism, st.Thwackability, st.Tragicness}
}

func (st Stlats) pitching() []float64 {
	return []float64{st.Coldness, st.Overpowerment, st.Ruthlessness, st.Shakespearianism, st.Suppression, st.Unthwackability}
}

func (st Stlats) defense() []float64 {
	return []float64{st.Anticapitalism, st.Chasiness, st.Omniscience, st.Tenaciousness, st.Watchfulness}
}

func (st Stlats) running() []float64 {
	return []float64{st.BaseThirst, st.Continuation, st.GroundFriction, st.Indulgence, st.Laserlikeness}
}

func scaled(xs []float64, f float64) []float64 {
	for i := range xs {
		xs[i] *= f
	}
	return xs
}

// BatterFeatures returns id's batting stlats scaled by its batting additive
// and the team boost.
func (s *Side) BatterFeatures(id string) []float64 {
	f := s.PlayerAdditives(id).Batting * s.team.Batting
	return scaled(s.cfg.Players[id].Stlats.batting(), f)
}

// CurrentBatterFeatures is BatterFeatures for the batter at the plate.
func (s *Side) CurrentBatterFeatures() []float64 {
	return s.BatterFeatures(s.CurrentBatter())
}

// PitcherFeatures returns the starting pitcher's pitching stlats.
func (s *Side) PitcherFeatures() []float64 {
	id := s.cfg.StartingPitcher
	f := s.PlayerAdditives(id).Pitching * s.team.Pitching
	return scaled(s.cfg.Players[id].Stlats.pitching(), f)
}

// DefenseFeatures averages the lineup's defensive stlats.
func (s *Side) DefenseFeatures() []float64 {
	out := make([]float64, DefenseLen)
	for _, id := range s.cfg.Lineup {
		f := s.PlayerAdditives(id).Defense * s.team.Defense
		for i, v := range s.cfg.Players[id].Stlats.defense() {
			out[i] += v * f
		}
	}
	n := float64(len(s.cfg.Lineup))
	for i := range out {
		out[i] /= n
	}
	return out
}

// RunnerFeatures returns id's base-running stlats.
func (s *Side) RunnerFeatures(id string) []float64 {
	f := s.PlayerAdditives(id).Running * s.team.Running
	return scaled(s.cfg.Players[id].Stlats.running(), f)
}
