package service

import "github.com/rocketscienceinc/tictactoe-rooms/internal/entity"

type skillRange struct {
	name   string
	base   int
	max    int
	chance float64
}

var skillTable = []skillRange{
	{name: entity.SkillBorrow, base: 3, max: 4, chance: 0.5},
	{name: entity.SkillLock, base: 2, max: 3, chance: 0.5},
	{name: entity.SkillUnlock, base: 1, max: 2, chance: 0.5},
}

// RollSkills gives every skill its max charge with the skill's chance, else its base charge.
func RollSkills(dice Dice) entity.Skills {
	skills := make(entity.Skills, len(skillTable))
	for _, skill := range skillTable {
		if dice.Float64() < skill.chance {
			skills[skill.name] = skill.max
		} else {
			skills[skill.name] = skill.base
		}
	}

	return skills
}
