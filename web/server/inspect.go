package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Index        int                    `json:"index"` // Position of the hit geometry in the scene
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult describes the first geometry seen through a pixel
type InspectResult struct {
	Hit          bool
	Geometry     *scene.Geometry
	Index        int
	Ray          core.Ray
	Intersection geometry.Intersection
}

// inspectPixel casts the pixel's camera ray and returns the first geometry hit
func inspectPixel(s *scene.Scene, camera *geometry.Camera, pixelX, pixelY int) InspectResult {
	ray := camera.GetRay(pixelX, pixelY)

	g, hit, ok := s.Intersect(ray)
	if !ok {
		return InspectResult{Hit: false, Ray: ray}
	}

	index := -1
	for i := range s.Geometries {
		if &s.Geometries[i] == g {
			index = i
			break
		}
	}

	return InspectResult{
		Hit:          true,
		Geometry:     g,
		Index:        index,
		Ray:          ray,
		Intersection: hit,
	}
}

// extractMaterialInfo describes how the geometry shades
func (s *Server) extractMaterialInfo(g *scene.Geometry) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	if g.Light {
		properties["emission"] = vecToArray(material.Emission)
		properties["color"] = hexColor(material.Emission)
		return "emissive", properties
	}

	properties["albedo"] = vecToArray(material.Albedo)
	properties["color"] = hexColor(material.Albedo)
	properties["scattering"] = material.Diffuse.String()
	return "lambertian", properties
}

// extractGeometryInfo describes the hit sphere
func (s *Server) extractGeometryInfo(g *scene.Geometry) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"center": vecToArray(g.Sphere.Center),
		"radius": g.Sphere.Radius,
	}
	if g.Light {
		return "sphere_light", properties
	}
	return "sphere", properties
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	d, err := s.loadScene(inspectReq.Scene)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	camera, err := geometry.NewCamera(geometry.MergeCameraConfig(d.Camera, geometry.CameraConfig{
		Width:  inspectReq.Width,
		Height: inspectReq.Height,
	}))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if pixelX < 0 || pixelX >= camera.Width() || pixelY < 0 || pixelY >= camera.Height() {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(d.Scene, camera, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, Index: -1})
		return
	}

	materialType, materialProps := s.extractMaterialInfo(result.Geometry)
	geometryType, geometryProps := s.extractGeometryInfo(result.Geometry)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Index:        result.Index,
		Point:        vecToArray(result.Intersection.Point(result.Ray)),
		Normal:       vecToArray(result.Intersection.Normal),
		Distance:     result.Intersection.T,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}

func vecToArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// hexColor formats a linear color clamped to [0,1] as #rrggbb
func hexColor(v core.Vec3) string {
	v = v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(v.X*255), int(v.Y*255), int(v.Z*255))
}
