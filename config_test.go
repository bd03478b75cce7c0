package polystore

import "testing"

func TestConfig_Validate(t *testing.T) {

	cases := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{
			name: "mongo",
			cfg:  Config{Backend: BackendMongo, Mongo: MongoConfig{URL: "mongodb://localhost:27017"}},
		},
		{
			name: "postgres",
			cfg:  Config{Backend: BackendPostgres, Postgres: PostgresConfig{ConnStr: "host=localhost"}},
		},
		{
			name:        "mongo without url",
			cfg:         Config{Backend: BackendMongo},
			expectError: true,
		},
		{
			name:        "postgres without connection string",
			cfg:         Config{Backend: BackendPostgres},
			expectError: true,
		},
		{
			name:        "unknown backend",
			cfg:         Config{Backend: "cassandra"},
			expectError: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.expectError {
				if err == nil {
					t.Fatal("Expected an error")
				}
				if !IsConfiguration(err) {
					t.Errorf("Expected a configuration error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
