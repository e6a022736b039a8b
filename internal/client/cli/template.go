package cli

const usageTemplate = `
syncmesh - sync mesh node operations

Usage:
  syncmesh [OPTIONS] COMMAND

Options:
  --version             Show version information
  --peer URL            Peer node URL (default: http://localhost:8080)
  --db PATH             Path to local credentials database (default: syncmesh-cli.db)
  --secret SECRET       Cluster secret (not recommended, use env var or file)
  --secret-file PATH    Path to file containing cluster secret

Cluster Secret Priority (highest to lowest):
  1. SYNCMESH_CLUSTER_SECRET environment variable
  2. --secret-file (file path)
  3. --secret (command line)
  4. Interactive prompt (fallback)

Commands:
  register              Register this node in the mesh
  login                 Authenticate against a peer node
  logout                Revoke tokens and remove local credentials
  status                Show authentication status
  nodes                 List mesh nodes (--active for live nodes only)
  stats                 Show sync subsystem counters
  conflicts             List conflict log (--unreviewed, --limit N)
  review <conflict-id>  Mark a conflict as reviewed
  recover               Start partition recovery (--mode, --since, --peer, --strategy)

Examples:
  export SYNCMESH_CLUSTER_SECRET='shared-cluster-secret'
  syncmesh register --name store-harare-01 --address http://10.0.0.5:8080
  syncmesh login --name store-harare-01
  syncmesh nodes --active
  syncmesh conflicts --unreviewed
  syncmesh recover --mode since --since 1042 --peer 7f3c...
`

const nodesListTemplate = `
=== Mesh Nodes ===

{{- if eq (len .) 0 }}
No nodes found.
{{ else }}
Found {{len .}} node(s):

{{- range . }}
- {{ .Name }}
   ID:        {{ .NodeID }}
   Address:   {{ .Address }}
   Active:    {{ .IsActive }}
   Last seen: {{ .LastSeen.Format "2006-01-02 15:04:05" }}
   {{- if .Capabilities }}
   Caps:      {{ range $i, $c := .Capabilities }}{{ if $i }}, {{ end }}{{ $c }}{{ end }}
   {{- end }}

{{- end }}
{{- end }}
`

const statsTemplate = `
=== Sync Stats ===

Events:
  Total:     {{ .Events.Total }}
  Pending:   {{ .Events.Pending }}
  Processed: {{ .Events.Processed }}
  Abandoned: {{ .Events.Abandoned }}

Sessions:
  Total:     {{ .Sessions.Total }}
  Active:    {{ .Sessions.Active }}
  Completed: {{ .Sessions.Completed }}
  Failed:    {{ .Sessions.Failed }}

Conflicts:
  Total:          {{ .Conflicts.Total }}
  Auto-resolved:  {{ .Conflicts.AutoResolved }}
  Pending review: {{ .Conflicts.PendingReview }}

Active nodes: {{ .Nodes }}
`

const conflictsListTemplate = `
=== Conflict Log ===

{{- if eq (len .) 0 }}
No conflicts found.
{{ else }}
Found {{len .}} conflict(s):

{{- range . }}
- {{ .EntityType }}/{{ .EntityID }}
   ID:       {{ .ID }}
   Type:     {{ .ConflictType }}
   Strategy: {{ .ResolutionStrategy }}
   {{- if .WinnerNodeID }}
   Winner:   {{ .WinnerNodeID }}
   {{- end }}
   Nodes:    {{ .LocalNodeID }} (ts={{ .LocalTimestamp }}) vs {{ .RemoteNodeID }} (ts={{ .RemoteTimestamp }})
   Reviewed: {{ .HumanReviewed }}
   Detected: {{ .DetectedAt.Format "2006-01-02 15:04:05" }}

{{- end }}
Use 'syncmesh review <id>' to mark a conflict as reviewed.
{{- end }}
`
