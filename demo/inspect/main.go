package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	las "github.com/tingold/orb-las"
)

var maxPoints = flag.Int("points", 5, "number of points to print, -1 for all")

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: inspect [-points n] file.las\n")
		os.Exit(2)
	}

	r, err := las.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open %s: %v", flag.Arg(0), err)
	}
	defer r.Close()

	h := r.Header()
	fmt.Printf("LAS %s, point format %d, %d bytes per record\n",
		h.Version, h.Format.ID, h.Format.RecordLength())
	fmt.Printf("system identifier:   %q\n", h.SystemIdentifier)
	fmt.Printf("generating software: %q\n", h.GeneratingSoftware)
	if date, ok := h.CreationDate(); ok {
		fmt.Printf("created:             %s\n", date.Format("2006-01-02"))
	}
	fmt.Printf("points:              %d\n", h.PointCount)
	fmt.Printf("bounds:              (%g, %g, %g) - (%g, %g, %g)\n",
		h.Bounds.Min.X, h.Bounds.Min.Y, h.Bounds.Min.Z,
		h.Bounds.Max.X, h.Bounds.Max.Y, h.Bounds.Max.Z)

	for _, v := range h.Vlrs {
		fmt.Printf("vlr:  %s/%d %q (%d bytes)\n", v.UserID, v.RecordID, v.Description, len(v.Data))
	}
	for _, v := range h.Evlrs {
		fmt.Printf("evlr: %s/%d %q (%d bytes)\n", v.UserID, v.RecordID, v.Description, len(v.Data))
	}

	crs, err := r.CRS()
	if err != nil {
		log.Fatalf("Failed to read CRS: %v", err)
	}
	if crs != nil {
		if horizontal, vertical, ok := crs.EPSG(); ok {
			fmt.Printf("epsg:                %d", horizontal)
			if vertical != 0 {
				fmt.Printf(" + %d", vertical)
			}
			fmt.Println()
		} else if crs.WKT != "" {
			fmt.Printf("crs:                 wkt, %d chars\n", len(crs.WKT))
		} else {
			fmt.Printf("crs:                 geotiff, %d keys\n", len(crs.GeoKeys))
		}
	}

	for i := 0; *maxPoints < 0 || i < *maxPoints; i++ {
		p, err := r.ReadPoint()
		if err != nil {
			log.Fatalf("Failed to read point %d: %v", i, err)
		}
		if p == nil {
			break
		}
		fmt.Printf("point %d: (%g, %g, %g) intensity %d return %d/%d class %d\n",
			i, p.X, p.Y, p.Z, p.Intensity, p.ReturnNumber, p.NumberOfReturns, p.Classification)
	}
}
