package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	applog "noiressence/internal/log"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Every new connection to ":memory:" is a separate, empty database.
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed the house collection and marketing copy if the DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Products (the catalog). seq keeps the catalog in insertion order.
CREATE TABLE IF NOT EXISTS products(
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL CHECK (length(trim(name)) > 0),
  brand TEXT NOT NULL,
  price TEXT NOT NULL CHECK (CAST(price AS REAL) >= 0),
  description TEXT NOT NULL DEFAULT '',
  notes_json TEXT NOT NULL DEFAULT '[]',
  image TEXT NOT NULL,
  category TEXT NOT NULL CHECK (category IN ('Men','Women','Unisex')),
  is_new INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));

-- Journal (static marketing content)
CREATE TABLE IF NOT EXISTS journal_posts(
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  excerpt TEXT NOT NULL,
  image TEXT NOT NULL,
  published TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS testimonials(
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  role TEXT NOT NULL,
  content TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  avatar TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed.catalog")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO products(id,name,brand,price,description,notes_json,image,category,is_new) VALUES
	  ('1','Midnight Oud','Noir Essence','185','A smoky veil of agarwood drifting over warm amber, made for long evenings.','["Oud","Amber","Saffron"]','https://picsum.photos/id/1/400/600','Unisex',1),
	  ('2','Velvet Rose','Noir Essence','150','Dark Damask rose folded into patchouli and a whisper of vanilla.','["Rose","Patchouli","Vanilla"]','https://picsum.photos/id/2/400/600','Women',0),
	  ('3','Cedar Noir','Noir Essence','165','Dry cedar and vetiver sharpened with black pepper.','["Cedar","Vetiver","Black Pepper"]','https://picsum.photos/id/3/400/600','Men',0),
	  ('4','Citrus Lumiere','Noir Essence','120','Sicilian bergamot and neroli on a bed of white musk.','["Bergamot","Neroli","White Musk"]','https://picsum.photos/id/4/400/600','Unisex',1),
	  ('5','Jasmine Eclipse','Noir Essence','175','Night-blooming jasmine over tonka and sandalwood.','["Jasmine","Tonka","Sandalwood"]','https://picsum.photos/id/5/400/600','Women',1),
	  ('6','Leather Atlas','Noir Essence','210','Supple leather, tobacco leaf and a trace of birch tar.','["Leather","Tobacco","Birch"]','https://picsum.photos/id/6/400/600','Men',0)`)

	tx.MustExec(`INSERT INTO journal_posts(id,title,excerpt,image,published) VALUES
	  ('layering','The Art of Layering Scents','How to pair two fragrances so each deepens the other rather than competing.','https://picsum.photos/id/10/800/500','October 12, 2024'),
	  ('sourcing-oud','Sourcing Oud: A Journey to the East','Following agarwood from the forests of Assam to the bottle on your dresser.','https://picsum.photos/id/11/800/500','September 28, 2024'),
	  ('winter-trends','Winter Fragrance Trends 2024','Resins, spice and smoke: the notes defining the colder months.','https://picsum.photos/id/12/800/500','November 05, 2024')`)

	tx.MustExec(`INSERT INTO testimonials(id,name,role,content,rating,avatar) VALUES
	  ('t1','Camille Laurent','Art Director','Midnight Oud is the only scent I am complimented on by strangers.',5,'https://picsum.photos/id/20/100/100'),
	  ('t2','James Whitfield','Architect','Cedar Noir lasts from the first meeting to the last dinner.',5,'https://picsum.photos/id/21/100/100'),
	  ('t3','Amara Okafor','Sommelier','The Scent Sommelier found me Jasmine Eclipse in three questions.',4,'https://picsum.photos/id/22/100/100')`)

	return tx.Commit()
}
