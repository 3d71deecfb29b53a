package testutils

// Sample sheets as players paste them. FightSheet parses without alerts.
const (
	FightSheet = `Rex vs Mika for Spar
Round 1
Age: 2 years
Size: Medium
Build: Balanced
Skills: Master Hunting & Novice Fighting`

	// FightSheetOneSkill lists a single skill and fails the skill count
	FightSheetOneSkill = `Rex vs Mika for Spar
Round 1
Age: 2 years
Size: Medium
Build: Balanced
Skills: Master Fighting`

	// FightSheetDuplicate is two forms pasted together
	FightSheetDuplicate = `Rex vs Mika for Spar
Round 1
Age: 2 years
Size: Medium
Build: Balanced
Skills: Master Hunting & Novice Fighting
Skills: Master Hunting & Novice Fighting`

	// FightSheetItems names an item and a buff by alias
	FightSheetItems = `Rex vs Mika for Spar
Round 1
Age: 2 years
Size: Medium
Build: Balanced
Skills: Master Hunting & Novice Fighting
Items: lucky rabbit, trespass`

	FleeSheet = `Zip - flee attempt
Size: Small
Build: Light
Skills: Master Navigation`

	RaceSheet = `Zip - race
Age: 2 years
Size: Small
Build: Light
Racing Accessory: Racing Shoes
Skills: Master Navigation`
)
