package docker

import "fmt"

// Management labels identify containers owned by this control plane.
const (
	labelManaged = "basehive.managed"
	labelProject = "basehive.project"
	labelSlug    = "basehive.slug"
)

// containerPort is where the database listens inside the container.
const containerPort = 8090

// containerLabels builds the full label set for a project container:
// management labels for discovery by this process, plus Traefik routing
// labels so the edge proxy self-configures without coordination.
func containerLabels(projectID, slug, baseDomain string) map[string]string {
	return map[string]string{
		labelManaged: "true",
		labelProject: projectID,
		labelSlug:    slug,

		"traefik.enable": "true",
		fmt.Sprintf("traefik.http.routers.%s.rule", slug):                      fmt.Sprintf("Host(`%s.%s`)", slug, baseDomain),
		fmt.Sprintf("traefik.http.routers.%s.tls.certresolver", slug):          "letsencrypt",
		fmt.Sprintf("traefik.http.services.%s.loadbalancer.server.port", slug): fmt.Sprintf("%d", containerPort),
	}
}
