// Package domain models the Environment Ministry WBGT (暑さ指数) feed data.
//
// # Data Source
//
// WBGT values for roughly 840 monitoring locations are published by the
// Ministry of the Environment heat illness prevention site as wide-format CSV
// files, partitioned by calendar month. The ingestion cycle fetches the
// current month's file on a cron schedule, parses the most recent fully
// populated row, and produces one reading per location.
//
// # Feed Conventions
//
// Observation CSV layout:
//
//	Date,Time,<code1>,<code2>,...            header; column order is fixed
//	2025/7/7,15:00,28.5,30.2,...             one row per observation time
//
// Dates are JST wall-clock time ("YYYY/M/D" and "H:MM"). The trailing rows of
// the file may be partially written while the upstream updates, so the newest
// usable row is found by scanning backward for a row with a date, a time, and
// at least 5 of its first 10 data columns populated.
//
// Forecast CSV layout:
//
//	,,2025070718,2025070721,...              header; 10-digit YYYYMMDDHH tokens
//	11001,2025/07/07 15:25,210,180,...       per-location forecast values
//
// Forecast values encode one decimal digit as an integer: 210 means WBGT 21.0.
//
// Location codes are stable 5-digit strings whose first two digits identify
// the prefecture (44132 is in Tokyo, 62078 in Osaka). The embedded location
// directory covers a subset of the feed's stations, so feed columns with
// codes absent from it are dropped and counted rather than treated as
// errors; the dropped count shrinks as the table is filled in.
//
// # Risk Levels
//
// Readings are classified into the five-step 暑さ指数 guidance scale with
// inclusive lower bounds:
//
//	       <21  level 0  ほぼ安全    適宜水分補給
//	21.0–24.9  level 1  注意        積極的に水分補給
//	25.0–27.9  level 2  警戒        積極的に休息
//	28.0–30.9  level 3  厳重警戒    激しい運動は中止
//	      ≥31  level 4  危険        運動は原則中止
//
// Classification is a pure function of the WBGT value; ingestion-time
// annotation and any later re-classification agree on bucket boundaries.
//
// # Derived Fields
//
// No live temperature feed is available, so temperature is estimated as
// WBGT + 5.0°C and humidity defaults to 65%. Both are replaced when the
// separate temperature JSON feed supplies real values.
package domain
