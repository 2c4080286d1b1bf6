// Package domain models earthquake events published in USGS-style Atom feeds.
//
// # Data Source
//
// Feed files are Atom documents (namespace http://www.w3.org/2005/Atom) with
// GeoRSS extensions (namespace http://www.georss.org/georss), one file per
// data snapshot, stored locally with an ".atom" extension. Each <entry> is a
// single seismic event.
//
// # Feed Conventions
//
// Title format:
//
//	"M <magnitude> - <city>, <place>"  →  e.g. "M 5.2 - 10 km NE of Anytown, Someplace"
//	The magnitude prefix is "M" followed by optional whitespace and a decimal.
//	The location is the text after the last " - " separator, split on ", ".
//	Titles that do not follow this shape yield an empty city and place; the
//	split is a heuristic over the publisher's convention, not a format.
//
// Timestamp format:
//
//	<updated> carries an RFC 3339 instant, e.g. "2025-01-28T12:34:56.789Z".
//	The text before "T" is the date, the text after it (minus a trailing "Z")
//	is the time of day. Prefix searches compare these strings directly;
//	range searches use the parsed instant in UTC.
//
// Geospatial fields:
//
//	<georss:point> holds "lat lon" and <georss:elev> the elevation in meters
//	(negative for depth). Both are passed through unvalidated.
//
// Categories:
//
//	<category label="Age" term="Past Day"/>
//	<category label="Magnitude" term="Magnitude 4"/>
//	When a label repeats within one entry, the last occurrence wins.
//
// # Magnitude Buckets
//
// A bucket is the floor of the magnitude value, restricted to 0 through 5.
// Values outside that range belong to no bucket and never match a bucket query.
package domain
