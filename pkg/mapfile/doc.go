// Package mapfile reads Teeworlds/DDNet map datafiles.
//
// Only the container structure is decoded: the datafile header and the
// item type table. Rules that need deeper knowledge of the map contents
// work from these summaries or from the raw bytes.
//
// # Basic Usage
//
//	m, err := mapfile.Open("maps/Kobra.map")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(m.Name, m.Version, m.ItemCount(mapfile.ItemTypeLayer))
package mapfile
