package extraction

// Default prompts. Each can be replaced through the [prompts] config section
// as long as the replacement keeps the same %s placeholders.
const (
	// %s: plan text
	DefaultDesignPrompt = `You analyze board game plans and extract structured data.

Plan:
%s

Return exactly this JSON and nothing else:
{
  "title": "game title",
  "theme": "comma-separated themes (e.g. magic, technology, school, puzzle, cooperation)",
  "mechanics": ["mechanic 1", "mechanic 2", "mechanic 3"],
  "description": "detailed description of the game"
}`

	// %s: JSON of the extracted design
	DefaultTranslatePrompt = `Translate the following board game data into English. Keep the JSON structure and keys; translate only the values.

Source data:
%s

Return the translated data as the same JSON object and nothing else.`

	// %s: plan title, %s: plan text
	DefaultElementsPrompt = `Analyze the board game plan below and extract the key elements for a similarity search against the BoardGameGeek catalogue.

Game title: %s

Plan:
%s

Return exactly this JSON:
{
  "title": "the actual game title",
  "search_query": "one query text combining all key information, with English keywords",
  "theme_keywords": "core theme keywords (space exploration, medieval fantasy, economic development, ...)",
  "mechanic_keywords": "core mechanic keywords (deck building, worker placement, resource management, ...)",
  "description": "a short summary of the core concept",
  "target_players": "expected player count (e.g. 2-4)",
  "estimated_complexity": "expected complexity (a number from 1 to 5)"
}

Guidelines:
- Prefer English keywords and terms likely to appear in the BGG database.
- Keep the abstraction level moderate; do not be overly specific.`
)
