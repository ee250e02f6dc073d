// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package vrcx

const userIDQuery = `SELECT value FROM configs WHERE key = 'config:lastuserloggedin'`

// myLocationsQuery pairs each of the viewer's joins with the next leave from
// the same location, falling back to the next join anywhere as the estimated
// leave. Pseudo locations are filtered after the window function so that they
// still close the preceding visit. {{group_name}} is replaced with the
// gamelog_location.group_name column, or NULL on databases that predate it.
const myLocationsQuery = `
WITH
joined AS (
	SELECT
		id           AS join_id,
		user_id,
		display_name,
		location,
		created_at   AS join_created_at,
		time         AS join_time
	FROM gamelog_join_leave
	WHERE user_id = :user_id
		AND type = 'OnPlayerJoined'
),
next_leave AS (
	SELECT
		j.join_id,
		MIN(l.created_at) AS leave_created_at
	FROM joined j
	LEFT JOIN gamelog_join_leave l
		ON l.user_id = j.user_id
		AND l.type = 'OnPlayerLeft'
		AND l.location = j.location
		AND l.created_at > j.join_created_at
	GROUP BY j.join_id
),
paired AS (
	SELECT
		j.*,
		nl.leave_created_at,
		(SELECT l.id FROM gamelog_join_leave l
			WHERE l.user_id = j.user_id
				AND l.type = 'OnPlayerLeft'
				AND l.location = j.location
				AND l.created_at = nl.leave_created_at
			ORDER BY l.id LIMIT 1) AS leave_id
	FROM joined j
	LEFT JOIN next_leave nl ON j.join_id = nl.join_id
),
final AS (
	SELECT
		p.*,
		LEAD(p.join_created_at) OVER (PARTITION BY p.user_id ORDER BY p.join_created_at) AS next_join_created_at
	FROM paired p
)
SELECT
	f.join_id,
	f.user_id,
	f.display_name,
	f.location,
	f.join_created_at,
	f.leave_id,
	f.leave_created_at,
	f.next_join_created_at,
	COALESCE(f.leave_created_at, f.next_join_created_at) AS estimated_leave_created_at,
	(SELECT gl.world_name FROM gamelog_location gl WHERE gl.location = f.location ORDER BY gl.id DESC LIMIT 1) AS world_name,
	(SELECT gl.world_id FROM gamelog_location gl WHERE gl.location = f.location ORDER BY gl.id DESC LIMIT 1) AS world_id,
	(SELECT {{group_name}} FROM gamelog_location gl WHERE gl.location = f.location ORDER BY gl.id DESC LIMIT 1) AS group_name
FROM final f
WHERE f.location NOT LIKE 'local:%'
	AND f.location NOT LIKE 'offline:%'
	AND f.location NOT LIKE 'traveling:%'
	AND (COALESCE(f.leave_created_at, f.next_join_created_at) IS NULL
		OR COALESCE(f.leave_created_at, f.next_join_created_at) >= :since)
ORDER BY f.join_id DESC
LIMIT :location_count
`

// instanceMembersQuery aggregates join and leave events per user inside the
// visit window. %s is the friend log source: a validated table name or an
// empty derived table.
const instanceMembersQuery = `
WITH user_events AS (
	SELECT
		user_id,
		MAX(display_name) AS display_name,
		MAX(CASE WHEN type = 'OnPlayerJoined' THEN created_at END) AS last_join_at,
		MAX(CASE WHEN type = 'OnPlayerLeft' THEN created_at END) AS last_leave_at
	FROM gamelog_join_leave
	WHERE location = :location
		AND created_at BETWEEN :window_start
			AND COALESCE(:window_end, strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now'))
	GROUP BY user_id
)
SELECT
	ue.user_id,
	ue.display_name,
	ue.last_join_at,
	ue.last_leave_at,
	CASE
		WHEN ue.last_leave_at IS NULL THEN 1
		WHEN ue.last_join_at > ue.last_leave_at THEN 1
		ELSE 0
	END AS is_currently,
	CASE WHEN ue.user_id <> '' AND instr(:location, ue.user_id) > 0 THEN 1 ELSE 0 END AS is_instance_owner,
	CASE WHEN f.user_id IS NOT NULL THEN 1 ELSE 0 END AS is_friend
FROM user_events ue
LEFT JOIN %s f ON ue.user_id = f.user_id
ORDER BY ue.user_id
`

const noFriendsSource = `(SELECT NULL AS user_id WHERE 0)`

const tableExistsQuery = `SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`

const groupNameColumnQuery = `SELECT COUNT(*) FROM pragma_table_info('gamelog_location') WHERE name = 'group_name'`
