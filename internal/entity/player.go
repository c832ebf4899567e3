package entity

const (
	ComputerID   = "computer"
	ComputerName = "Computer"
)

const (
	SkillBorrow = "borrow"
	SkillLock   = "lock"
	SkillUnlock = "unlock"
)

type Skills map[string]int

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Seat   Mark   `json:"seat"`
	Score  int    `json:"score"`
	Skills Skills `json:"skills,omitempty"`
}

func NewComputerPlayer(seat Mark) *Player {
	return &Player{
		ID:   ComputerID,
		Name: ComputerName,
		Seat: seat,
	}
}

func (that *Player) IsComputer() bool {
	return that.ID == ComputerID
}

func (that *Player) Clone() *Player {
	clone := *that
	if that.Skills != nil {
		clone.Skills = make(Skills, len(that.Skills))
		for name, charge := range that.Skills {
			clone.Skills[name] = charge
		}
	}

	return &clone
}
