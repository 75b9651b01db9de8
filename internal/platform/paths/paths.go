package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Resolver maps projects and releases onto the local storage tree:
//
//	{root}/projects/{project}/releases/{release_id}/staging
//	{root}/projects/{project}/releases/{release_id}/export
//	{root}/projects/{project}/releases/{name}_{format}.zip
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	if root == "" {
		root = "."
	}
	return &Resolver{root: root}
}

func (r *Resolver) ProjectDir(project string) string {
	return filepath.Join(r.root, "projects", Slug(project))
}

func (r *Resolver) ReleasesDir(project string) string {
	return filepath.Join(r.ProjectDir(project), "releases")
}

func (r *Resolver) ReleaseDir(project, releaseID string) string {
	return filepath.Join(r.ReleasesDir(project), releaseID)
}

func (r *Resolver) StagingDir(project, releaseID string) string {
	return filepath.Join(r.ReleaseDir(project, releaseID), "staging")
}

func (r *Resolver) ExportDir(project, releaseID string) string {
	return filepath.Join(r.ReleaseDir(project, releaseID), "export")
}

func (r *Resolver) ArtifactPath(project, releaseName, exportFormat string) string {
	name := fmt.Sprintf("%s_%s.zip", Slug(releaseName), exportFormat)
	return filepath.Join(r.ReleasesDir(project), name)
}

// StagedName builds the collision-proof staging filename for a source image.
// Images from different datasets may share a filename, so the dataset name is
// always part of the staged name.
func StagedName(datasetName, filename string) string {
	return fmt.Sprintf("%s_%s", Slug(datasetName), filename)
}

// Slug replaces whitespace with underscores so names are safe as path
// segments.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(name)), "_")
}
