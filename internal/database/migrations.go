package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		createGenTable,
		createGenTableColumn,
	}

	for i, migration := range migrations {
		log.Debug().Msgf("Running migration %d/%d", i+1, len(migrations))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info().Int("count", len(migrations)).Msg("All migrations completed successfully")
	return nil
}

const createGenTable = `
CREATE TABLE IF NOT EXISTS gen_table (
  table_id        BIGSERIAL PRIMARY KEY,
  table_name      VARCHAR(200) NOT NULL UNIQUE,
  table_comment   VARCHAR(500) DEFAULT '',
  class_name      VARCHAR(100) DEFAULT '',
  tpl_category    VARCHAR(200) DEFAULT 'crud',
  tpl_web_type    VARCHAR(30)  DEFAULT 'element-plus',
  package_name    VARCHAR(100),
  module_name     VARCHAR(30),
  business_name   VARCHAR(30),
  function_name   VARCHAR(50),
  function_author VARCHAR(50),
  gen_type        CHAR(1)      DEFAULT '0',
  gen_path        VARCHAR(200) DEFAULT '/',
  options         TEXT,
  remark          VARCHAR(500),
  create_by       VARCHAR(64)  DEFAULT '',
  create_time     TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  update_by       VARCHAR(64)  DEFAULT '',
  update_time     TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

COMMENT ON TABLE gen_table IS 'code generator tables';
`

const createGenTableColumn = `
CREATE TABLE IF NOT EXISTS gen_table_column (
  column_id      BIGSERIAL PRIMARY KEY,
  table_id       BIGINT NOT NULL REFERENCES gen_table(table_id) ON DELETE CASCADE,
  column_name    VARCHAR(200) NOT NULL,
  column_comment VARCHAR(500),
  column_type    VARCHAR(100),
  java_field     VARCHAR(200),
  java_type      VARCHAR(500),
  html_type      VARCHAR(200),
  query_type     VARCHAR(200) DEFAULT 'EQ',
  dict_type      VARCHAR(200) DEFAULT '',
  is_pk          BOOLEAN NOT NULL DEFAULT FALSE,
  is_increment   BOOLEAN NOT NULL DEFAULT FALSE,
  is_required    BOOLEAN NOT NULL DEFAULT FALSE,
  is_insert      BOOLEAN NOT NULL DEFAULT FALSE,
  is_edit        BOOLEAN NOT NULL DEFAULT FALSE,
  is_list        BOOLEAN NOT NULL DEFAULT FALSE,
  is_query       BOOLEAN NOT NULL DEFAULT FALSE,
  sort           INTEGER,
  create_by      VARCHAR(64) DEFAULT '',
  create_time    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  update_by      VARCHAR(64) DEFAULT '',
  update_time    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_gen_table_column_table_id ON gen_table_column(table_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_gen_table_column_name ON gen_table_column(table_id, column_name);
`
