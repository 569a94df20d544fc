// Package language normalises the language tags found in media stream
// metadata and configuration (ISO 639-1, ISO 639-2 bibliographic or
// terminology codes, BCP 47 forms such as "en-US", and English names).
package language
