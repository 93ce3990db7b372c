package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS teams (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	full_name TEXT NOT NULL DEFAULT '',
	abbreviation TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	conference TEXT NOT NULL DEFAULT '',
	division TEXT NOT NULL DEFAULT '',
	pace REAL NOT NULL DEFAULT 0,
	defensive_rating REAL NOT NULL DEFAULT 0,
	scoring_margin REAL NOT NULL DEFAULT 0,
	games_played INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	team_id TEXT NOT NULL DEFAULT '',
	active INTEGER NOT NULL DEFAULT 0,
	upstream_id INTEGER NOT NULL DEFAULT 0,
	jersey_number TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	start_time TEXT NOT NULL DEFAULT '',
	home_team_id TEXT NOT NULL,
	away_team_id TEXT NOT NULL,
	status TEXT NOT NULL,
	home_score INTEGER NOT NULL DEFAULT 0,
	away_score INTEGER NOT NULL DEFAULT 0,
	season TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS observations (
	player_id TEXT NOT NULL,
	game_id TEXT NOT NULL,
	team_id TEXT NOT NULL DEFAULT '',
	opponent_id TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL,
	minutes REAL NOT NULL DEFAULT 0,
	usage REAL,
	points REAL NOT NULL DEFAULT 0,
	rebounds REAL NOT NULL DEFAULT 0,
	assists REAL NOT NULL DEFAULT 0,
	steals REAL NOT NULL DEFAULT 0,
	blocks REAL NOT NULL DEFAULT 0,
	threes REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (player_id, game_id)
);

CREATE INDEX IF NOT EXISTS idx_observations_player_date ON observations (player_id, date);

CREATE TABLE IF NOT EXISTS lines (
	player_id TEXT NOT NULL,
	game_id TEXT NOT NULL,
	stat TEXT NOT NULL,
	date TEXT NOT NULL,
	line REAL NOT NULL,
	over_price INTEGER,
	under_price INTEGER,
	sportsbook TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (player_id, game_id, stat, sportsbook)
);

CREATE TABLE IF NOT EXISTS spreads (
	game_id TEXT NOT NULL,
	team_id TEXT NOT NULL,
	spread REAL NOT NULL,
	PRIMARY KEY (game_id, team_id)
);

CREATE TABLE IF NOT EXISTS projections (
	id TEXT PRIMARY KEY,
	player_id TEXT NOT NULL,
	player_name TEXT NOT NULL DEFAULT '',
	team_id TEXT NOT NULL DEFAULT '',
	opponent_id TEXT NOT NULL DEFAULT '',
	game_id TEXT NOT NULL,
	stat TEXT NOT NULL,
	created_at TEXT NOT NULL,
	season_avg REAL NOT NULL,
	l5_avg REAL NOT NULL,
	l10_avg REAL NOT NULL,
	games INTEGER NOT NULL,
	baseline REAL NOT NULL,
	adjusted REAL NOT NULL,
	std_dev REAL NOT NULL,
	floor REAL NOT NULL,
	ceiling REAL NOT NULL,
	matchup TEXT NOT NULL,
	factors TEXT NOT NULL,
	line REAL,
	over_price INTEGER,
	under_price INTEGER,
	sportsbook TEXT NOT NULL DEFAULT '',
	edge_pct REAL,
	over_prob REAL,
	under_prob REAL,
	recommendation TEXT,
	UNIQUE (player_id, game_id, stat)
);

CREATE TABLE IF NOT EXISTS outcomes (
	id TEXT PRIMARY KEY,
	projection_id TEXT NOT NULL UNIQUE,
	player_id TEXT NOT NULL,
	game_id TEXT NOT NULL,
	game_date TEXT NOT NULL,
	stat TEXT NOT NULL,
	projected REAL NOT NULL,
	actual REAL NOT NULL,
	error REAL NOT NULL,
	abs_error REAL NOT NULL,
	pct_error REAL NOT NULL,
	line REAL,
	over_price INTEGER,
	under_price INTEGER,
	over_prob REAL,
	recommendation TEXT NOT NULL DEFAULT '',
	bet_result TEXT NOT NULL DEFAULT '',
	edge_pct REAL NOT NULL DEFAULT 0,
	graded_at TEXT NOT NULL
);
`
