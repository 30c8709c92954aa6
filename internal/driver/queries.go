package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Plan(plan_id);",
	"CREATE INDEX ON :CopyrightCheck(uuid);",
	"CREATE INDEX ON :Game(title);",
}

const (
	// Writing to the plan node first makes concurrent saves for the same plan
	// conflict, so one of them is retried after the other commits.
	LockPlanQuery = `
		MERGE (p:Plan {plan_id: $plan_id})
		SET p.last_checked_at = $checked_at
	`

	// Moves the current check of a plan to HAD_CHECK so only one stays current.
	DetachCurrentCheckQuery = `
		MATCH (p:Plan {plan_id: $plan_id})-[r:HAS_CHECK]->(c:CopyrightCheck)
		DELETE r
		CREATE (p)-[:HAD_CHECK]->(c)
	`

	SaveCheckQuery = `
		MERGE (p:Plan {plan_id: $plan_id})
		CREATE (c:CopyrightCheck {uuid: $uuid})
		SET c.risk_level = $risk_level,
			c.summary = $summary,
			c.checked_at = $checked_at,
			c.similar_games_json = $similar_games_json
		CREATE (p)-[:HAS_CHECK]->(c)
		RETURN c.uuid AS uuid
	`

	LinkSimilarGamesQuery = `
		MATCH (c:CopyrightCheck {uuid: $uuid})
		UNWIND $games AS g
		MERGE (game:Game {title: g.title})
		SET game.bgg_link = g.bgg_link
		CREATE (c)-[:SIMILAR_TO {score: g.score}]->(game)
	`

	LatestCheckQuery = `
		MATCH (p:Plan {plan_id: $plan_id})-[:HAS_CHECK]->(c:CopyrightCheck)
		RETURN c.uuid AS uuid,
			c.risk_level AS risk_level,
			c.summary AS summary,
			c.checked_at AS checked_at,
			c.similar_games_json AS similar_games_json
		ORDER BY c.checked_at DESC
		LIMIT 1
	`
)
