package template

// razdfileTemplate renders a starter Razdfile.yml.
const razdfileTemplate = `# Razdfile for a {{.Title}} project
version: '3'
{{- if .Tools}}

mise:
  tools:
{{- range .Tools}}
    {{.Name}}: {{printf "%q" .Version}}
{{- end}}
{{- end}}

tasks:
  default:
    desc: {{printf "%q" .DefaultDesc}}
    cmds:
      - task: setup
      - {{printf "%q" .DefaultCmd}}
{{range .Tasks}}
  {{.Name}}:
    desc: {{printf "%q" .Desc}}
    cmds:
      - {{printf "%q" .Cmd}}
{{end}}
  install-tools:
    desc: "Install tools listed in mise.toml"
    internal: true
    cmds:
      - mise install
`
