package worldgen

import "fmt"

// designPreamble is the fixed system-level constraints shared by every
// generation stage.
const designPreamble = `You are a creative game designer specializing in roguelike games. ` +
	`Your task is to assist in the design of a new roguelike game. ` +
	`There are certain requirements that you should keep in mind at all times while designing the game:
1. The genre is roguelike, singleplayer, minimalistic.
2. The game uses a 2D ASCII engine.
3. The game engine does not support sound.
4. The game is terminal-only (the engine draws the environment with different symbols).
5. The game experience should be short. No more than an hour.`

const themesFormatInstructions = `Format your response as a valid JSON object with this structure:
{
  "themes": ["theme1", "theme2", "theme3", "theme4", "theme5", "theme6", "theme7", "theme8", "theme9", "theme10"]
}
The "themes" array must contain exactly 10 distinct themes.`

const mechanicsFormatInstructions = `Format your response as a valid JSON object with this structure:
{
  "mechanics": [
    { "name": "Mechanic Name", "description": "Detailed mechanic description" },
    { "name": "Another Mechanic", "description": "Another detailed description" }
  ]
}
The "mechanics" array must contain between 2 and 7 mechanics with distinct names.`

const itemsFormatInstructions = `Format your response as a valid JSON object with this structure:
{
  "items": [
    { "name": "Item Name", "symbol": "A", "description": "Item description", "mechanic": "Related Mechanic", "rarity": "common" }
  ]
}
Each item needs a unique name, a single ASCII character as its symbol, a clear
description, the name of the mechanic it supports, and a rarity of common,
uncommon or rare. The "items" array must contain between 0 and 3 items.`

// repairSystemPrompt drives the single bounded auto-repair pass of the
// extractor.
const repairSystemPrompt = `You fix malformed structured output. ` +
	`You will receive a raw response and the format it was supposed to follow. ` +
	`Reformat the response into valid JSON matching that format exactly. ` +
	`Preserve the content; change only the structure. ` +
	`Return ONLY the JSON with no additional text, explanations, or formatting.`

func themesPrompt(userContext string) string {
	prompt := `Generate 10 different, "orthogonal" themes for a game. ` +
		`Each theme should be concise but descriptive, distinct from the others, ` +
		`and implementable without complex graphics.`
	if userContext != "" {
		prompt += fmt.Sprintf("\nUser preferences to consider: %s", userContext)
	}
	return prompt + "\n" + themesFormatInstructions
}

func titlePrompt(theme string) string {
	return fmt.Sprintf("Generate a compelling title for a game with the following theme: '%s'. "+
		"The title should be catchy, appropriate for the genre, and reflect the theme without being too generic. "+
		"Respond with just the title, nothing else.", theme)
}

func plotPrompt(theme, title string) string {
	return fmt.Sprintf("Generate a plot for a game with title '%s' and the following overall theme: '%s'. "+
		"The plot should be concise but engaging, completable within a one-hour gameplay session, "+
		"and linear - no complex branching narratives.", title, theme)
}

func mechanicsPrompt(theme, title, plot string) string {
	return fmt.Sprintf("Generate 2-3 detailed game mechanics for a minimalistic console roguelike game "+
		"with the title '%s' and theme '%s'. "+
		"The mechanics should align with this plot: '%s'. "+
		"%s\n"+
		"IMPORTANT: Return ONLY the JSON with no additional text, explanations, or formatting.",
		title, theme, plot, mechanicsFormatInstructions)
}

func itemsPrompt(designDoc string, mechanic Mechanic) string {
	return fmt.Sprintf("We're in the process of a game design. "+
		"You will be supplied with the design document and one of the game mechanics. "+
		"Your job is to come up with a list of 0 to 3 items that will be used in the game. "+
		"They should be strictly aligned with the game mechanic given. "+
		"If the game mechanic does not have anything to do with items, give an empty list.\n"+
		"Here's the design document:\n%s\n\n"+
		"Here's the game mechanic:\n%s\n\n%s",
		designDoc, mechanic.String(), itemsFormatInstructions)
}
