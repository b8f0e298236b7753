package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForceFlag bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold a starter configuration and example suite",
	Long: `Init creates a chainspec.properties file and a suites/ directory
with an example suite showing chaining, priorities and assertions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		files := map[string]string{
			"chainspec.properties":     starterProperties,
			"suites/users.yaml":        starterSuite,
			"suites/schemas/user.json": starterSchema,
		}

		for name, content := range files {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil && !initForceFlag {
				fmt.Fprintf(cmd.OutOrStdout(), "skipping %s (exists, use --force to overwrite)\n", path)
				continue
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nNext: chainspec run %s --config %s\n",
			filepath.Join(dir, "suites"), filepath.Join(dir, "chainspec.properties"))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "Overwrite existing files")
}

const starterProperties = `# chainspec environment configuration
base.url=http://localhost:8080
env=dev

# Optional settings
request.timeout=30s
follow.redirects=false
validate.ssl=true
# rate.limit=10
# report.dir=reports
# history.db=chainspec.db
`

const starterSuite = `suite: users-crud
scenarios:
  - name: createUser
    priority: 1
    tags: [smoke, users]
    request:
      method: POST
      path: /users
      headers:
        Content-Type: application/json
      body: |
        {"name": "Ada Lovelace", "email": "ada@example.com"}
    assert:
      - subject: status
        equals: 201
      - subject: body.name
        equals: Ada Lovelace
      - subject: body
        schema: schemas/user.json
    capture:
      userId: body.id

  - name: getUser
    priority: 2
    dependsOn: createUser
    tags: [users]
    request:
      method: GET
      path: /users/{{userId}}
    assert:
      - subject: status
        equals: 200
      - subject: body.email
        contains: "@example.com"

  - name: deleteUser
    priority: 3
    dependsOn: getUser
    tags: [users]
    request:
      method: DELETE
      path: /users/{{userId}}
    assert:
      - subject: status
        equals: 204
`

const starterSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "email"],
  "properties": {
    "id": {"type": ["string", "number"]},
    "name": {"type": "string"},
    "email": {"type": "string"}
  }
}
`
